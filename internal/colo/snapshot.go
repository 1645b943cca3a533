package colo

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/zeebo/xxh3"

	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot limits.
const (
	maxGridSize = 26 * 26
	maxTiles    = maxGridSize * 64
)

// Snapshot is the tile layout of one colocation as sent by the facility API.
type Snapshot struct {
	ColoID    string           `json:"ColoId"`
	StartX    string           `json:"StartX"`
	StartY    string           `json:"StartY"`
	ColoXSize int              `json:"ColoXSize"`
	ColoYSize int              `json:"ColoYSize"`
	Tiles     []tilespace.Tile `json:"Tiles"`
}

// DecodeSnapshot reads a snapshot from r. The colo ID in the body, if any,
// is overridden by coloID when coloID is not empty.
func DecodeSnapshot(r io.Reader, coloID string) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalidSnapshot, err)
	}
	if coloID != "" {
		s.ColoID = coloID
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode returns the snapshot as JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Validate checks the grid header. Individual tiles are not rejected for
// malformed labels; rendering degrades them instead.
func (s *Snapshot) Validate() error {
	var errs []string
	if strings.TrimSpace(s.ColoID) == "" {
		errs = append(errs, "ColoId is required")
	}
	if tilespace.ColumnIndex(s.StartX) < 0 {
		errs = append(errs, fmt.Sprintf("StartX %q must be two letters", s.StartX))
	}
	if _, err := strconv.Atoi(strings.TrimSpace(s.StartY)); err != nil {
		errs = append(errs, fmt.Sprintf("StartY %q must be an integer", s.StartY))
	}
	if s.ColoXSize < 0 || s.ColoXSize > maxGridSize {
		errs = append(errs, fmt.Sprintf("ColoXSize must be between 0 and %d", maxGridSize))
	}
	if s.ColoYSize < 0 || s.ColoYSize > maxGridSize {
		errs = append(errs, fmt.Sprintf("ColoYSize must be between 0 and %d", maxGridSize))
	}
	if len(s.Tiles) > maxTiles {
		errs = append(errs, fmt.Sprintf("snapshot exceeds %d tiles", maxTiles))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(errs, "; "))
	}
	return nil
}

// OriginRow parses StartY, returning 0 when it is malformed.
func (s *Snapshot) OriginRow() int {
	n, err := strconv.Atoi(strings.TrimSpace(s.StartY))
	if err != nil {
		return 0
	}
	return n
}

// Fingerprint returns a stable hash of the snapshot's content, used as the
// HTTP entity tag and to skip redundant cache writes.
func (s *Snapshot) Fingerprint() string {
	h := xxh3.New()
	writeField(h, s.ColoID)
	writeField(h, s.StartX)
	writeField(h, s.StartY)
	writeInt(h, int64(s.ColoXSize))
	writeInt(h, int64(s.ColoYSize))
	for _, t := range s.Tiles {
		writeInt(h, t.ID)
		writeField(h, t.Name)
		writeField(h, t.X)
		writeField(h, string(t.Y))
		writeField(h, t.PermittedBrand)
		writeField(h, string(t.Class))
		writeField(h, string(t.AssocDirection))
		writeField(h, string(t.Status))
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func writeField(h *xxh3.Hasher, s string) {
	writeInt(h, int64(len(s)))
	_, _ = h.WriteString(s) //nolint:errcheck // hash writes cannot fail
}

func writeInt(h *xxh3.Hasher, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, _ = h.Write(buf[:]) //nolint:errcheck // hash writes cannot fail
}
