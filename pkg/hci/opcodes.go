package hci

import "fmt"

// https://software-dl.ti.com/simplelink/esd/simplelink_cc13x2_sdk/1.60.00.29_new/exports/docs/ble5stack/vendor_specific_guide/BLE_Vendor_Specific_HCI_Guide/hci_interface.html

type PacketType uint8

const (
	PacketTypeCommand         PacketType = 0x01
	PacketTypeACLData         PacketType = 0x02
	PacketTypeSynchronousData PacketType = 0x03
	PacketTypeEvent           PacketType = 0x04
	PacketTypeExtendedCommand PacketType = 0x09
)

type Opcode uint16

const (
	OpcodeSetEventMask                       Opcode = 0x0C01
	OpcodeReset                              Opcode = 0x0C03
	OpcodeReadBDAddr                         Opcode = 0x1009
	OpcodeLESetEventMask                     Opcode = 0x2001
	OpcodeLESetRandomAddress                 Opcode = 0x2005
	OpcodeLESetAdvertisingParameters         Opcode = 0x2006
	OpcodeSetAdvertisingData                 Opcode = 0x2008
	OpcodeLESetAdvertisingEnable             Opcode = 0x200A
	OpcodeReadFilterAcceptListSize           Opcode = 0x200F
	OpcodeClearFilterAcceptList              Opcode = 0x2010
	OpcodeLEAddDeviceToFilterAcceptList      Opcode = 0x2011
	OpcodeLERemoveDeviceFromFilterAcceptList Opcode = 0x2012
	OpcodeLEAddDeviceToResolvingList         Opcode = 0x2027
	OpcodeLERemoveDeviceFromResolvingList    Opcode = 0x2028
	OpcodeLEClearResolvingList               Opcode = 0x2029
	OpcodeLEReadResolvingListSize            Opcode = 0x202A
	OpcodeLESetAddressResolutionEnable       Opcode = 0x202D
	OpcodeLESetPrivacyMode                   Opcode = 0x204E
)

var opcodeNames = map[Opcode]string{
	OpcodeSetEventMask:                       "Set_Event_Mask",
	OpcodeReset:                              "Reset",
	OpcodeReadBDAddr:                         "Read_BD_ADDR",
	OpcodeLESetEventMask:                     "LE_Set_Event_Mask",
	OpcodeLESetRandomAddress:                 "LE_Set_Random_Address",
	OpcodeLESetAdvertisingParameters:         "LE_Set_Advertising_Parameters",
	OpcodeSetAdvertisingData:                 "LE_Set_Advertising_Data",
	OpcodeLESetAdvertisingEnable:             "LE_Set_Advertising_Enable",
	OpcodeReadFilterAcceptListSize:           "LE_Read_Filter_Accept_List_Size",
	OpcodeClearFilterAcceptList:              "LE_Clear_Filter_Accept_List",
	OpcodeLEAddDeviceToFilterAcceptList:      "LE_Add_Device_To_Filter_Accept_List",
	OpcodeLERemoveDeviceFromFilterAcceptList: "LE_Remove_Device_From_Filter_Accept_List",
	OpcodeLEAddDeviceToResolvingList:         "LE_Add_Device_To_Resolving_List",
	OpcodeLERemoveDeviceFromResolvingList:    "LE_Remove_Device_From_Resolving_List",
	OpcodeLEClearResolvingList:               "LE_Clear_Resolving_List",
	OpcodeLEReadResolvingListSize:            "LE_Read_Resolving_List_Size",
	OpcodeLESetAddressResolutionEnable:       "LE_Set_Address_Resolution_Enable",
	OpcodeLESetPrivacyMode:                   "LE_Set_Privacy_Mode",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(0x%04x)", uint16(o))
}

type EventCode uint8

const (
	EventCodeDisconnectionComplete                EventCode = 0x05
	EventCodeEncryptionChange                     EventCode = 0x08
	EventCodeReadRemoteVersionInformationComplete EventCode = 0x0C
	EventCodeCommandComplete                      EventCode = 0x0E
	EventCodeCommandStatus                        EventCode = 0x0F
	EventCodeHardwareError                        EventCode = 0x10
	EventCodeNumberOfCompletedPackets             EventCode = 0x13
	EventCodeDataBufferOverflow                   EventCode = 0x1A
	EventCodeEncryptionKeyRefreshComplete         EventCode = 0x30
	EventCodeAuthenticatedPayloadTimeoutExpired   EventCode = 0x57
	EventCodeLEMeta                               EventCode = 0x3E
)

type LEMetaSubeventCode uint8

const (
	LEMetaSubeventCodeConnectionComplete             LEMetaSubeventCode = 0x01
	LEMetaSubeventCodeAdvertisingReport              LEMetaSubeventCode = 0x02
	LEMetaSubeventCodeConnectionUpdate               LEMetaSubeventCode = 0x03
	LEMetaSubeventCodeReadRemoteUsedFeaturesComplete LEMetaSubeventCode = 0x04
	LEMetaSubeventCodeLongTermKeyRequest             LEMetaSubeventCode = 0x05
	LEMetaSubeventCodeReadLocalP256PublicKeyComplete LEMetaSubeventCode = 0x08
	LEMetaSubeventCodeGenerateDHKeyComplete          LEMetaSubeventCode = 0x09
	LEMetaSubeventCodeEnhancedConnectionComplete     LEMetaSubeventCode = 0x0A
	LEMetaSubeventCodePHYUpdateComplete              LEMetaSubeventCode = 0x0C
	LEMetaSubeventCodeExtendedAdvertisingReport      LEMetaSubeventCode = 0x0D
)
