package pointers

func Float64(v float64) *float64 { return &v }
func Uint(v uint) *uint          { return &v }
