// Package station holds the core of the radar station: the Reading sample
// type, the shared latest-reading snapshot, ingest statistics, and the reader
// loop that drains the serial port.
package station

import (
	"fmt"
	"strconv"
	"strings"
)

// Reading is one complete, validated sample from the scanner head.
type Reading struct {
	Angle        int     `json:"angle"`
	Distance     float64 `json:"distance"`
	Humidity     float64 `json:"humidity"`
	TemperatureC float64 `json:"temperatureC"`
	TemperatureF float64 `json:"temperatureF"`
}

// readingFields is the fixed shape of a scanner line:
// angle,distance,humidity,temperatureC,temperatureF
const readingFields = 5

// ParseReading parses one serial line into a Reading.
//
// The line must split on "," into exactly five tokens: an integer angle and
// four floats. Anything else is rejected whole; a malformed line never yields
// a partial Reading.
func ParseReading(line string) (Reading, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != readingFields {
		return Reading{}, fmt.Errorf("want %d fields, got %d", readingFields, len(parts))
	}

	angle, err := strconv.Atoi(parts[0])
	if err != nil {
		return Reading{}, fmt.Errorf("angle: %w", err)
	}

	var vals [readingFields - 1]float64
	for i, name := range [...]string{"distance", "humidity", "temperatureC", "temperatureF"} {
		v, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			return Reading{}, fmt.Errorf("%s: %w", name, err)
		}
		vals[i] = v
	}

	return Reading{
		Angle:        angle,
		Distance:     vals[0],
		Humidity:     vals[1],
		TemperatureC: vals[2],
		TemperatureF: vals[3],
	}, nil
}
