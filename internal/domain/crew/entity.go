package crew

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
)

type Crew struct {
	ID          int64
	MachineID   int64
	Letter      Letter
	CycleOffset int
	Members     Members
	IsActive    bool
}

type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
)

var LetterValues = []string{string(LetterA), string(LetterB), string(LetterC)}

// OffsetValues are the stagger offsets that give three crews full coverage.
var OffsetValues = []int{0, 2, 4}

func (l Letter) Valid() bool {
	return l == LetterA || l == LetterB || l == LetterC
}

// DefaultOffset is the conventional offset for a crew letter.
func (l Letter) DefaultOffset() int {
	switch l {
	case LetterB:
		return 2
	case LetterC:
		return 4
	}
	return 0
}

func ValidOffset(offset int) bool {
	for _, o := range OffsetValues {
		if o == offset {
			return true
		}
	}
	return false
}

// Members is the ordered list of employee ids in a crew. It is stored as a
// JSON array and validated whenever it crosses the persistence boundary.
type Members []int64

// Validate rejects non-positive and duplicate ids.
func (m Members) Validate() error {
	seen := make(map[int64]struct{}, len(m))
	for i, id := range m {
		if id <= 0 {
			return fmt.Errorf("%w: member %d has non-positive id %d", ErrInvalidMembers, i, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: employee %d listed twice", ErrInvalidMembers, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (m Members) Contains(employeeID int64) bool {
	for _, id := range m {
		if id == employeeID {
			return true
		}
	}
	return false
}

func (m Members) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(m))
}

func (m *Members) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMembers, err)
	}
	parsed := Members(ids)
	if err := parsed.Validate(); err != nil {
		return err
	}
	*m = parsed
	return nil
}

// CrewAssignment is the materialised shift of a crew on a date.
type CrewAssignment struct {
	ID             int64
	MachineID      int64
	CrewID         int64
	Date           time.Time
	ShiftType      shift.Type
	AutoGenerated  bool
	IsOverride     bool
	OverrideReason *string
}

// CrewShift is a crew's resolved state on a date.
type CrewShift struct {
	Crew      Crew
	Date      time.Time
	ShiftType shift.Type
	Override  bool
}
