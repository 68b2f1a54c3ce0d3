package config

import (
	"context"
	"io"
	"time"

	"github.com/muxable/leprivacy/pkg/addrmgr"
	"github.com/muxable/leprivacy/pkg/hci"
	"github.com/muxable/leprivacy/pkg/privacy"
	"github.com/pkg/errors"
)

const (
	KeyPolicy        = "le_privacy.policy"
	KeyLocalIRK      = "le_privacy.local_irk"
	KeyMinRotation   = "le_privacy.min_rotation"
	KeyMaxRotation   = "le_privacy.max_rotation"
	KeyStaticAddress = "le_privacy.static_address"
)

// Privacy is the address policy configuration of one controller.
type Privacy struct {
	Policy addrmgr.AddressPolicy

	// IRK is the local identity resolving key. It is generated on first
	// load and kept from then on, so peers that bonded keep resolving us.
	IRK privacy.IRK

	MinRotation time.Duration
	MaxRotation time.Duration

	// StaticAddress is only used by the static policy.
	StaticAddress hci.Address
}

func DefaultPrivacy() Privacy {
	return Privacy{
		Policy:      addrmgr.UseResolvableAddress,
		MinRotation: 7 * time.Minute,
		MaxRotation: 15 * time.Minute,
	}
}

func (p *Privacy) Validate() error {
	switch p.Policy {
	case addrmgr.UsePublicAddress:
	case addrmgr.UseStaticAddress:
		if p.StaticAddress.RandomSubtype() != hci.RandomSubtypeStatic {
			return errors.Errorf("privacy: %s is not a static random address", p.StaticAddress)
		}
	case addrmgr.UseResolvableAddress, addrmgr.UseNonResolvableAddress:
		if p.MinRotation <= 0 {
			return errors.New("privacy: min_rotation must be positive")
		}
		if p.MaxRotation < p.MinRotation {
			return errors.Errorf("privacy: max_rotation %s is below min_rotation %s", p.MaxRotation, p.MinRotation)
		}
		if p.Policy == addrmgr.UseResolvableAddress && p.IRK.IsZero() {
			return errors.New("privacy: resolvable policy needs an irk")
		}
	default:
		return errors.Errorf("privacy: invalid policy %s", p.Policy)
	}
	return nil
}

// LoadPrivacy reads the settings from store on top of DefaultPrivacy. A
// missing IRK, and a missing static address under the static policy, are
// generated from rand and written back.
func LoadPrivacy(ctx context.Context, store Store, rand io.Reader) (Privacy, error) {
	p := DefaultPrivacy()

	load := func(key string, parse func(string) error) error {
		v, ok, err := store.Get(ctx, key)
		if err != nil || !ok {
			return err
		}
		return errors.Wrapf(parse(v), "privacy: %s", key)
	}
	parseDuration := func(d *time.Duration) func(string) error {
		return func(v string) (err error) {
			*d, err = time.ParseDuration(v)
			return err
		}
	}

	err := load(KeyPolicy, func(v string) (err error) {
		p.Policy, err = addrmgr.ParseAddressPolicy(v)
		return err
	})
	if err != nil {
		return p, err
	}
	if err := load(KeyMinRotation, parseDuration(&p.MinRotation)); err != nil {
		return p, err
	}
	if err := load(KeyMaxRotation, parseDuration(&p.MaxRotation)); err != nil {
		return p, err
	}
	if err := load(KeyLocalIRK, func(v string) (err error) {
		p.IRK, err = privacy.ParseIRK(v)
		return err
	}); err != nil {
		return p, err
	}
	if err := load(KeyStaticAddress, func(v string) (err error) {
		p.StaticAddress, err = hci.ParseAddress(v)
		return err
	}); err != nil {
		return p, err
	}

	if p.IRK.IsZero() {
		if p.IRK, err = privacy.GenerateIRK(rand); err != nil {
			return p, err
		}
		if err := store.Set(ctx, KeyLocalIRK, p.IRK.String()); err != nil {
			return p, err
		}
	}
	if p.Policy == addrmgr.UseStaticAddress && p.StaticAddress.IsZero() {
		if p.StaticAddress, err = privacy.GenerateStaticAddress(rand); err != nil {
			return p, err
		}
		if err := store.Set(ctx, KeyStaticAddress, p.StaticAddress.String()); err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}

// Save writes the policy and rotation bounds. The IRK and static address are
// only ever written by LoadPrivacy.
func (p *Privacy) Save(ctx context.Context, store Store) error {
	for _, kv := range [][2]string{
		{KeyPolicy, p.Policy.String()},
		{KeyMinRotation, p.MinRotation.String()},
		{KeyMaxRotation, p.MaxRotation.String()},
	} {
		if err := store.Set(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}
