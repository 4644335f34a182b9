package ingest

import "strings"

// cityAbbreviations maps formal province/city names to their short forms.
var cityAbbreviations = map[string]string{
	"서울특별시":   "서울시",
	"제주특별자치도": "제주도",
	"세종특별자치시": "세종시",
}

// ShortenAddress reduces a full address to "<city> <district>". Addresses
// with fewer than two fields are returned trimmed but otherwise unchanged.
func ShortenAddress(address string) string {
	address = strings.TrimSpace(address)
	parts := strings.Fields(address)
	if len(parts) < 2 {
		return address
	}

	city, district := parts[0], parts[1]
	if short, ok := cityAbbreviations[city]; ok {
		city = short
	} else if strings.HasSuffix(city, "광역시") {
		// Metropolitan cities (부산광역시, ...) are kept as written.
	}

	return city + " " + district
}
