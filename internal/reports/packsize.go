package reports

import (
	"strconv"
	"strings"
)

// PackSizeMagnitude parses the leading numeric portion of a free-text pack
// size: "500ml" -> 500, "1.5kg" -> 1.5. Sizes without a numeric prefix
// ("large", "combo pack") yield 0.
func PackSizeMagnitude(packSize string) float64 {
	s := strings.TrimSpace(packSize)
	end := 0
	for end < len(s) {
		ch := s[end]
		if (ch >= '0' && ch <= '9') || ch == '.' {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
