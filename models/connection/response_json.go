package connection

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateShipwreck struct {
	WreckId string `json:"wreck_id"`
}

type RespLootShipwreck struct {
	WreckId  string `json:"wreck_id"`
	Gold     int    `json:"gold"`
	LootedBy string `json:"looted_by"`
}

type RespShipwreckSnapshot struct {
	Wrecks []WreckData `json:"wrecks"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
