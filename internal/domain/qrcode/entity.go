package qrcode

import "time"

// NetworkRange pairs a human-readable Wi-Fi name with the address range it hands out.
type NetworkRange struct {
	WifiName string `json:"wifiName" bson:"wifiName"`
	IP       string `json:"ip" bson:"ip"`
}

// QRCode binds a physical location to the networks from which attendance may be recorded.
type QRCode struct {
	ID                   string
	Location             string
	WorkStartTime        string
	WorkEndTime          string
	AllowedNetworkRanges []NetworkRange
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (q QRCode) IPRanges() []string {
	ranges := make([]string, 0, len(q.AllowedNetworkRanges))
	for _, r := range q.AllowedNetworkRanges {
		ranges = append(ranges, r.IP)
	}
	return ranges
}

func (q QRCode) WifiNames() []string {
	names := make([]string, 0, len(q.AllowedNetworkRanges))
	for _, r := range q.AllowedNetworkRanges {
		names = append(names, r.WifiName)
	}
	return names
}
