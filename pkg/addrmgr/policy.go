package addrmgr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// AddressPolicy selects the kind of address used as initiator address.
type AddressPolicy int32

const (
	PolicyNotSet AddressPolicy = iota
	UsePublicAddress
	UseStaticAddress
	UseNonResolvableAddress
	UseResolvableAddress
)

var policyNames = map[AddressPolicy]string{
	PolicyNotSet:            "not-set",
	UsePublicAddress:        "public",
	UseStaticAddress:        "static",
	UseNonResolvableAddress: "non-resolvable",
	UseResolvableAddress:    "resolvable",
}

func (p AddressPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("AddressPolicy(%d)", int32(p))
}

// ParseAddressPolicy accepts the names printed by String, except not-set.
func ParseAddressPolicy(s string) (AddressPolicy, error) {
	for p, name := range policyNames {
		if p != PolicyNotSet && strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return PolicyNotSet, errors.Errorf("unknown address policy %q", s)
}

// Rotating reports whether the policy rotates a private address.
func (p AddressPolicy) Rotating() bool {
	return p == UseResolvableAddress || p == UseNonResolvableAddress
}

// ClientState is where a registered client is in the pause/resume handshake.
type ClientState int

const (
	WaitingForPause ClientState = iota
	Paused
	WaitingForResume
	Resumed
)

func (s ClientState) String() string {
	switch s {
	case WaitingForPause:
		return "waiting-for-pause"
	case Paused:
		return "paused"
	case WaitingForResume:
		return "waiting-for-resume"
	case Resumed:
		return "resumed"
	}
	return fmt.Sprintf("ClientState(%d)", int(s))
}
