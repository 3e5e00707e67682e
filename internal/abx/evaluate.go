package abx

import "github.com/23skdu/abx/internal/core"

// Evaluate scores one unit and reports 1 - theta at the unit's coordinates.
func (s *Scorer) Evaluate(u core.Unit, symmetric bool) (core.Scored, error) {
	th, err := s.Theta(u.A, u.B, u.X, symmetric)
	if err != nil {
		return core.Scored{}, err
	}
	return core.Scored{Coords: u.Coords, Score: 1 - th}, nil
}
