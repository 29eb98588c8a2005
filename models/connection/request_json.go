package connection

type ReqCreateShipwreck struct {
	Wreck WreckData `json:"wreck"`
}

type ReqLootShipwreck struct {
	WreckId  string `json:"wreck_id"`
	PlayerId string `json:"player_id"`
}

type ReqPlayerPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
