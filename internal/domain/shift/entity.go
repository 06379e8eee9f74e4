package shift

type Type string

const (
	Day       Type = "day"
	Night     Type = "night"
	Afternoon Type = "afternoon"
	Rest      Type = "rest"
)

var TypeValues = []string{
	string(Day),
	string(Night),
	string(Afternoon),
	string(Rest),
}

// CrewStateValues are the states a rotating crew can be in.
var CrewStateValues = []string{
	string(Day),
	string(Night),
	string(Rest),
}

// IsWorking reports whether the shift puts the employee on the floor.
func (t Type) IsWorking() bool {
	return t != Rest
}

func (t Type) Valid() bool {
	switch t {
	case Day, Night, Afternoon, Rest:
		return true
	}
	return false
}

// Order gives a stable sort position for listing.
func (t Type) Order() int {
	switch t {
	case Day:
		return 0
	case Afternoon:
		return 1
	case Night:
		return 2
	default:
		return 3
	}
}
