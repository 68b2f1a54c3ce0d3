package addrmgr

import (
	"fmt"

	"github.com/muxable/leprivacy/pkg/hci"
)

// CommandType labels queued commands in logs and metrics. Dispatch is driven
// by the command contents, never by the type.
type CommandType int

const (
	CommandRotateRandomAddress CommandType = iota
	CommandSetRandomAddress
	CommandAddDeviceToFilterAcceptList
	CommandRemoveDeviceFromFilterAcceptList
	CommandClearFilterAcceptList
	CommandAddDeviceToResolvingList
	CommandRemoveDeviceFromResolvingList
	CommandClearResolvingList
	CommandSetAddressResolutionEnable
	CommandSetPrivacyMode
	CommandUpdateIRK
)

var commandTypeNames = [...]string{
	CommandRotateRandomAddress:              "rotate_random_address",
	CommandSetRandomAddress:                 "set_random_address",
	CommandAddDeviceToFilterAcceptList:      "add_device_to_filter_accept_list",
	CommandRemoveDeviceFromFilterAcceptList: "remove_device_from_filter_accept_list",
	CommandClearFilterAcceptList:            "clear_filter_accept_list",
	CommandAddDeviceToResolvingList:         "add_device_to_resolving_list",
	CommandRemoveDeviceFromResolvingList:    "remove_device_from_resolving_list",
	CommandClearResolvingList:               "clear_resolving_list",
	CommandSetAddressResolutionEnable:       "set_address_resolution_enable",
	CommandSetPrivacyMode:                   "set_privacy_mode",
	CommandUpdateIRK:                        "update_irk",
}

func (t CommandType) String() string {
	if t >= 0 && int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return fmt.Sprintf("CommandType(%d)", int(t))
}

type commandContents interface {
	isCommandContents()
}

type rotateRandomAddress struct{}

type hciCommand struct {
	packet hci.CommandPacket
}

func (rotateRandomAddress) isCommandContents() {}
func (hciCommand) isCommandContents() {}

type command struct {
	typ      CommandType
	contents commandContents
}
