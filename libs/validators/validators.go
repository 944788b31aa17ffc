package validators

import (
	"regexp"

	"github.com/asaskevich/govalidator"
)

func init() {
	govalidator.TagMap["utr"] = govalidator.Validator(IsUTR)
	govalidator.TagMap["aoreference"] = govalidator.Validator(IsAccountsOfficeReference)
	govalidator.TagMap["monthyear"] = govalidator.Validator(IsMonthYear)
}

const (
	utr         string = "^[0-9]{10}$"
	aoReference string = "^[0-9]{3}P[A-Z][0-9]{7}[0-9X]$"
	monthYear   string = "^[0-9]{4}-(0[1-9]|1[0-2])$"
	correlation string = "^[0-9A-F]{32}$"
)

var (
	rxUTR         = regexp.MustCompile(utr)
	rxAOReference = regexp.MustCompile(aoReference)
	rxMonthYear   = regexp.MustCompile(monthYear)
	rxCorrelation = regexp.MustCompile(correlation)
)

// utrCheckCharacter maps the modulus 11 remainder of the weighted digit sum to
// the expected leading check character of a unique taxpayer reference.
var utrCheckCharacter = [11]byte{'2', '1', '9', '8', '7', '6', '5', '4', '3', '2', '1'}

var utrWeights = [9]int{6, 7, 8, 9, 10, 5, 4, 3, 2}

// IsUTR returns true if the string str is a unique taxpayer reference with a valid check character
func IsUTR(str string) bool {
	if !rxUTR.MatchString(str) {
		return false
	}
	sum := 0
	for i, w := range utrWeights {
		sum += w * int(str[i+1]-'0')
	}
	return str[0] == utrCheckCharacter[sum%11]
}

// IsAccountsOfficeReference returns true if the string str is a well formed accounts office reference
func IsAccountsOfficeReference(str string) bool {
	return rxAOReference.MatchString(str)
}

// IsMonthYear returns true if the string str is a YYYY-MM tax period
func IsMonthYear(str string) bool {
	return rxMonthYear.MatchString(str)
}

// IsCorrelationID returns true if the string str is a 32 character uppercase hex correlation id
func IsCorrelationID(str string) bool {
	return rxCorrelation.MatchString(str)
}
