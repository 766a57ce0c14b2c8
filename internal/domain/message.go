package domain

// InboundMessage is a The Things Network v2 uplink as posted by an HTTP
// integration. No field is required and none is read by the service.
type InboundMessage struct {
	AppID          string         `json:"app_id,omitempty"`
	DevID          string         `json:"dev_id,omitempty"`
	HardwareSerial string         `json:"hardware_serial,omitempty"`
	Port           int            `json:"port,omitempty"`
	Counter        int            `json:"counter,omitempty"`
	IsRetry        bool           `json:"is_retry,omitempty"`
	PayloadRaw     string         `json:"payload_raw,omitempty"`
	PayloadFields  map[string]any `json:"payload_fields,omitempty"`
	Metadata       UplinkMetadata `json:"metadata"`
	DownlinkURL    string         `json:"downlink_url,omitempty"`
}

type UplinkMetadata struct {
	Time       string            `json:"time,omitempty"`
	Frequency  float64           `json:"frequency,omitempty"`
	Modulation string            `json:"modulation,omitempty"`
	DataRate   string            `json:"data_rate,omitempty"`
	CodingRate string            `json:"coding_rate,omitempty"`
	Gateways   []GatewayMetadata `json:"gateways,omitempty"`
}

type GatewayMetadata struct {
	GatewayID string  `json:"gtw_id,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty"`
	Time      string  `json:"time,omitempty"`
	Channel   int     `json:"channel,omitempty"`
	RSSI      int     `json:"rssi,omitempty"`
	SNR       float64 `json:"snr,omitempty"`
}
