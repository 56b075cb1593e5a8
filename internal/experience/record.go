package experience

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MoveRecord is one applied move
type MoveRecord struct {
	Agent     string
	Taken     int
	Remaining int
}

// EpisodeRecord is the full history of one finished episode
type EpisodeRecord struct {
	EpisodeID  string
	Episode    int
	Pile       int
	FirstAgent string
	Moves      []MoveRecord
	Winner     string
	Loser      string
	StartedAt  time.Time
	Duration   time.Duration
}

// ToStruct converts the record into a protobuf Struct
func (r EpisodeRecord) ToStruct() (*structpb.Struct, error) {
	moves := make([]interface{}, len(r.Moves))
	for i, m := range r.Moves {
		moves[i] = map[string]interface{}{
			"agent":     m.Agent,
			"taken":     m.Taken,
			"remaining": m.Remaining,
		}
	}

	s, err := structpb.NewStruct(map[string]interface{}{
		"episode_id":  r.EpisodeID,
		"episode":     r.Episode,
		"pile":        r.Pile,
		"first_agent": r.FirstAgent,
		"moves":       moves,
		"winner":      r.Winner,
		"loser":       r.Loser,
		"started_at":  r.StartedAt.UTC().Format(time.RFC3339Nano),
		"duration_ms": float64(r.Duration) / float64(time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert episode %s: %w", r.EpisodeID, err)
	}
	return s, nil
}

// MarshalJSONLine renders the record as a single line of JSON
func (r EpisodeRecord) MarshalJSONLine() ([]byte, error) {
	s, err := r.ToStruct()
	if err != nil {
		return nil, err
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal episode %s: %w", r.EpisodeID, err)
	}
	return data, nil
}

// ParseEpisodeRecord is the inverse of MarshalJSONLine
func ParseEpisodeRecord(line []byte) (EpisodeRecord, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(line, s); err != nil {
		return EpisodeRecord{}, fmt.Errorf("failed to unmarshal episode: %w", err)
	}
	f := s.GetFields()

	r := EpisodeRecord{
		EpisodeID:  f["episode_id"].GetStringValue(),
		Episode:    int(f["episode"].GetNumberValue()),
		Pile:       int(f["pile"].GetNumberValue()),
		FirstAgent: f["first_agent"].GetStringValue(),
		Winner:     f["winner"].GetStringValue(),
		Loser:      f["loser"].GetStringValue(),
		Duration:   time.Duration(f["duration_ms"].GetNumberValue() * float64(time.Millisecond)),
	}
	if ts := f["started_at"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return EpisodeRecord{}, fmt.Errorf("bad started_at %q: %w", ts, err)
		}
		r.StartedAt = t
	}
	for _, mv := range f["moves"].GetListValue().GetValues() {
		m := mv.GetStructValue().GetFields()
		r.Moves = append(r.Moves, MoveRecord{
			Agent:     m["agent"].GetStringValue(),
			Taken:     int(m["taken"].GetNumberValue()),
			Remaining: int(m["remaining"].GetNumberValue()),
		})
	}
	return r, nil
}
