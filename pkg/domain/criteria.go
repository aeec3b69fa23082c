package domain

// Gender values accepted by the directory search.
const (
	GenderFemale = 1
	GenderMale   = 2
)

// Criteria holds the search fields collected from the user.
// A nil field has not been answered yet.
type Criteria struct {
	Age    *int `json:"age,omitempty"`
	Gender *int `json:"gender,omitempty"`
	City   *int `json:"city,omitempty"`
	Status *int `json:"status,omitempty"`
}

// Complete reports whether every field has been collected.
func (c Criteria) Complete() bool {
	return c.Age != nil && c.Gender != nil && c.City != nil && c.Status != nil
}

// Clone returns a deep copy.
func (c Criteria) Clone() Criteria {
	return Criteria{
		Age:    cloneInt(c.Age),
		Gender: cloneInt(c.Gender),
		City:   cloneInt(c.City),
		Status: cloneInt(c.Status),
	}
}

// IntPtr is a helper for building criteria literals.
func IntPtr(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
