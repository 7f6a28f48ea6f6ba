package result

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

var ErrParse = errors.New("failed to parse match result")

// Replay holds the replay fields used for scoring. Frame data is never decoded.
type Replay struct {
	MapConquered bool
	NumFrames    int
	Winner       string
	PlayerNames  []string
}

func ReadReplay(path string) (Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Replay{}, fmt.Errorf("%w: failed to read replay %s: %w", ErrParse, path, err)
	}
	return ParseReplay(data)
}

func ParseReplay(data []byte) (Replay, error) {
	if !gjson.ValidBytes(data) {
		return Replay{}, fmt.Errorf("%w: replay is not valid JSON", ErrParse)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return Replay{}, fmt.Errorf("%w: replay is not a JSON object", ErrParse)
	}

	conquered := doc.Get("map_conquered")
	if !conquered.IsBool() {
		return Replay{}, fieldError("map_conquered", "a boolean", conquered)
	}

	frames := doc.Get("num_frames")
	if frames.Type != gjson.Number || frames.Num != float64(int(frames.Num)) {
		return Replay{}, fieldError("num_frames", "an integer", frames)
	}

	winner := doc.Get("winner")
	if winner.Type != gjson.String {
		return Replay{}, fieldError("winner", "a string", winner)
	}

	names := doc.Get("player_names")
	if !names.IsArray() {
		return Replay{}, fieldError("player_names", "an array", names)
	}
	var playerNames []string
	var badName error
	names.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.String {
			badName = fieldError("player_names", "an array of strings", names)
			return false
		}
		playerNames = append(playerNames, v.String())
		return true
	})
	if badName != nil {
		return Replay{}, badName
	}
	if len(playerNames) == 0 {
		return Replay{}, fieldError("player_names", "a non-empty array", names)
	}

	return Replay{
		MapConquered: conquered.Bool(),
		NumFrames:    int(frames.Int()),
		Winner:       winner.String(),
		PlayerNames:  playerNames,
	}, nil
}

func fieldError(field, want string, got gjson.Result) error {
	if !got.Exists() {
		return fmt.Errorf("%w: replay has no %q field", ErrParse, field)
	}
	return fmt.Errorf("%w: replay field %q should be %s, got %s", ErrParse, field, want, got.Type)
}
