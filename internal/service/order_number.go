package service

import (
	"fmt"
	"time"
)

const orderNumberSpace = 100000

// newOrderNumber formats YYMMDD-NNNNN. Uniqueness is enforced by the store.
func (s *CheckoutServiceImpl) newOrderNumber(now time.Time) string {
	suffix := s.numberSuffix() % orderNumberSpace
	if suffix < 0 {
		suffix = -suffix
	}
	return fmt.Sprintf("%s-%05d", now.UTC().Format("060102"), suffix)
}
