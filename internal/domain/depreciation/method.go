package depreciation

// Method is the accounting method used to spread an asset's depreciable
// amount over its useful life
type Method string

const (
	MethodNone              Method = ""
	MethodStraightLine      Method = "STRAIGHT_LINE"
	MethodDecliningBalance  Method = "DECLINING_BALANCE"
	MethodSumOfYearsDigits  Method = "SUM_OF_YEARS_DIGITS"
	MethodUnitsOfProduction Method = "UNITS_OF_PRODUCTION"
)

// IsValid checks if the method is one of the supported methods
func (m Method) IsValid() bool {
	switch m {
	case MethodStraightLine, MethodDecliningBalance, MethodSumOfYearsDigits, MethodUnitsOfProduction:
		return true
	}
	return false
}

// IsSet returns true if a method has been chosen for the asset
func (m Method) IsSet() bool {
	return m != MethodNone
}

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}
