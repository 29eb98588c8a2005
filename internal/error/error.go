package error

import "fmt"

const (
	ConstErrLootFailed = "loot operation failed"
)

func ErrShipwreckNotExist(wreckId string) error {
	return fmt.Errorf("shipwreck with this id does not exist, id: %s", wreckId)
}

func ErrShipwreckAlreadyLooted(wreckId, lootedBy string) error {
	return fmt.Errorf("shipwreck already looted, id: %s\tlooted by: %s", wreckId, lootedBy)
}

func ErrInvalidPosition(x, y, z float64) error {
	return fmt.Errorf("position contains non-finite coordinates\tx: %f\ty: %f\tz: %f", x, y, z)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session exists but is nil, id: %s", sessionId)
}

func ErrNilPayload() error {
	return fmt.Errorf("the payload is nil and is not of type map")
}

func ErrMissingCollaborator(name string) error {
	return fmt.Errorf("required constructor dependency is missing: %s", name)
}

func ErrStoreUnavailable(reason string) error {
	return fmt.Errorf("remote state store unavailable: %s", reason)
}
