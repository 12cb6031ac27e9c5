package reporting

// Period identifies one reporting month.
type Period struct {
	Month int `json:"monthOfReport"`
	Year  int `json:"yearOfReport"`
}

func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2000
}

// Previous returns the immediately preceding period, wrapping January back
// to December of the prior year.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}
