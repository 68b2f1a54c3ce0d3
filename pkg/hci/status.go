package hci

import "fmt"

// StatusCode is the first return parameter of every command this package
// issues. Vol 1, Part F.
type StatusCode uint8

const (
	StatusSuccess                     StatusCode = 0x00
	StatusUnknownCommand              StatusCode = 0x01
	StatusUnknownConnectionIdentifier StatusCode = 0x02
	StatusHardwareFailure             StatusCode = 0x03
	StatusMemoryCapacityExceeded      StatusCode = 0x07
	StatusCommandDisallowed           StatusCode = 0x0C
	StatusUnsupportedFeature          StatusCode = 0x11
	StatusInvalidCommandParameters    StatusCode = 0x12
	StatusUnspecifiedError            StatusCode = 0x1F
)

func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnknownCommand:
		return "unknown command"
	case StatusUnknownConnectionIdentifier:
		return "unknown connection identifier"
	case StatusHardwareFailure:
		return "hardware failure"
	case StatusMemoryCapacityExceeded:
		return "memory capacity exceeded"
	case StatusCommandDisallowed:
		return "command disallowed"
	case StatusUnsupportedFeature:
		return "unsupported feature or parameter value"
	case StatusInvalidCommandParameters:
		return "invalid command parameters"
	case StatusUnspecifiedError:
		return "unspecified error"
	}
	return fmt.Sprintf("status 0x%02x", uint8(s))
}

// CommandError is returned by the synchronous helpers when the controller
// completes a command with a non-success status.
type CommandError struct {
	Opcode Opcode
	Status StatusCode
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Opcode, e.Status)
}
