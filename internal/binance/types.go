package binance

const (
	orderPath     = "/fapi/v1/order"
	cancelAllPath = "/fapi/v1/allOpenOrders"

	apiKeyHeader = "X-MBX-APIKEY"
)

// bookTickerPayload is the @bookTicker stream record. The raw stream delivers
// it flat; the combined-stream endpoint wraps it under a "data" field.
type bookTickerPayload struct {
	Symbol  string `json:"s"`
	BestBid string `json:"b"`
	BestAsk string `json:"a"`
}

type bookTickerMessage struct {
	bookTickerPayload
	Data *bookTickerPayload `json:"data"`
}
