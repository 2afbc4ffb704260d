package orders

import (
	"errors"
	"strconv"
)

// referenceOffset obscures raw order IDs in gateway references so
// they are not trivially enumerable.
const referenceOffset = 10000111

var ErrBadReference = errors.New("malformed order reference")

// EncodeOrderReference turns an order ID into the reference sent to
// the payment gateway: the offset ID in lowercase hex, no prefix.
func EncodeOrderReference(orderID uint) string {
	return strconv.FormatUint(uint64(orderID)+referenceOffset, 16)
}

// DecodeOrderReference inverts EncodeOrderReference.
func DecodeOrderReference(reference string) (uint, error) {
	value, err := strconv.ParseUint(reference, 16, 64)
	if err != nil {
		return 0, ErrBadReference
	}
	if value <= referenceOffset {
		return 0, ErrBadReference
	}
	return uint(value - referenceOffset), nil
}
