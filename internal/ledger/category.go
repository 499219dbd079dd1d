package ledger

// Category is the leave type of a request. The raw values match what the
// client submits and what is stored on the time_off_requests row.
type Category string

const (
	CategoryVacation Category = "Vacation"
	CategorySick     Category = "Sick Day"
	CategoryUnpaid   Category = "Personal (Unpaid)"
)

// balanceColumns is the static category -> employees column mapping. Unpaid
// leave has no backing balance, so it is deliberately absent.
var balanceColumns = map[Category]string{
	CategoryVacation: "vacation_balance",
	CategorySick:     "sick_balance",
}

// BalanceColumn returns the employees column backing a category, or false for
// categories that never touch the ledger.
func BalanceColumn(c Category) (string, bool) {
	col, ok := balanceColumns[c]
	return col, ok
}

// Valid reports whether c is a known category.
func Valid(c Category) bool {
	switch c {
	case CategoryVacation, CategorySick, CategoryUnpaid:
		return true
	}
	return false
}
