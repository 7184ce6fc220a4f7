package daemon

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/jose0796/scope.go/pkg/scale"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (e *Env) serveStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, e.Station.Status())
}

// traceResponse is the visible window of one channel. Disabled
// points are null.
type traceResponse struct {
	Channel       string     `json:"channel"`
	TimeScale     int        `json:"timescale"`
	SecondsPerDiv float64    `json:"seconds_per_div"`
	Points        []*float64 `json:"points"`
}

func (e *Env) serveTrace(w http.ResponseWriter, r *http.Request) {
	channel := scale.ChannelA1
	if name := r.URL.Query().Get("channel"); name != "" {
		enabled, err := ParseChannels(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for n, on := range enabled {
			if on {
				channel = n
				break
			}
		}
	}
	t := e.Station.Settings().TimeScale
	if val := r.URL.Query().Get("timescale"); val != "" {
		var err error
		if t, err = strconv.Atoi(val); err != nil || t < 0 || t > scale.MaxTimeScale {
			http.Error(w, "invalid timescale", http.StatusBadRequest)
			return
		}
	}
	values := e.Station.Trace.Visible(channel, t)
	resp := traceResponse{
		Channel:       scale.ChannelNames[channel],
		TimeScale:     t,
		SecondsPerDiv: scale.SecondsPerDiv(t),
		Points:        make([]*float64, len(values)),
	}
	for i := range values {
		if !math.IsNaN(values[i]) {
			resp.Points[i] = &values[i]
		}
	}
	writeJSON(w, &resp)
}
