package service

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

const receiptNumberPrefix = "AKRX"

var receiptNumberPattern = regexp.MustCompile(`^AKRX-\d{8}-\d{4}$`)

var istLocation = loadIST()

func loadIST() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// generateReceiptNumber returns AKRX-YYYYMMDD-NNNN using the IST calendar day.
func generateReceiptNumber(now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", receiptNumberPrefix, now.In(istLocation).Format("20060102"), 1000+rand.IntN(9000))
}

func IsReceiptNumber(v string) bool {
	return receiptNumberPattern.MatchString(v)
}
