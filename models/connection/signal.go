package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID

	// Client publishes a wreck it authored after sinking an enemy
	CodeCreateShipwreck

	// Client claims the loot of a wreck; the server arbitrates
	// first-claim-wins and the response confirms or rejects
	CodeLootShipwreck

	// Full list of live wrecks, sent on connect and on request
	CodeShipwreckSnapshot

	// Server push of a single created/changed wreck
	CodeShipwreckChanged

	// Best-effort position sync, no response
	CodePlayerPosition

	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
