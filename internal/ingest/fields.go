package ingest

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"opendoors/pkg/models"
)

// fold lower-cases s and strips accents and surrounding space, so that
// "Compensación IVA" and "compensacion iva" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

var directions = map[string]models.Direction{
	"issued": models.DirectionIssued, "emitida": models.DirectionIssued, "emitido": models.DirectionIssued,
	"venta": models.DirectionIssued, "ingreso": models.DirectionIssued,
	"received": models.DirectionReceived, "recibida": models.DirectionReceived, "recibido": models.DirectionReceived,
	"compra": models.DirectionReceived, "egreso": models.DirectionReceived,
}

func parseDirection(s string) (models.Direction, error) {
	if d, ok := directions[fold(s)]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: direction %q", ErrUnknownValue, s)
}

// parseFiscalType accepts "A", "a", "Factura A" or "FC A".
func parseFiscalType(s string) (models.FiscalType, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(s)))
	if len(fields) > 0 {
		ft := models.FiscalType(fields[len(fields)-1])
		if ft.Valid() {
			return ft, nil
		}
	}
	return "", fmt.Errorf("%w: fiscal type %q", ErrUnknownValue, s)
}

var statuses = map[string]models.Status{
	"pending_approval": models.StatusPendingApproval, "pendiente": models.StatusPendingApproval, "pending": models.StatusPendingApproval,
	"approved": models.StatusApproved, "aprobada": models.StatusApproved, "aprobado": models.StatusApproved,
	"paid": models.StatusPaid, "pagada": models.StatusPaid, "pagado": models.StatusPaid,
	"rejected": models.StatusRejected, "rechazada": models.StatusRejected, "rechazado": models.StatusRejected,
	"deleted": models.StatusDeleted, "eliminada": models.StatusDeleted, "eliminado": models.StatusDeleted,
}

// parseStatus maps an approval state; empty means a fresh draft.
func parseStatus(s string) (models.Status, error) {
	if strings.TrimSpace(s) == "" {
		return models.StatusPendingApproval, nil
	}
	if st, ok := statuses[fold(s)]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: status %q", ErrUnknownValue, s)
}

var paymentMethods = map[string]models.PaymentMethod{
	"cash": models.PaymentCash, "efectivo": models.PaymentCash,
	"transfer": models.PaymentTransfer, "transferencia": models.PaymentTransfer,
	"credit_card": models.PaymentCreditCard, "tarjeta de credito": models.PaymentCreditCard, "tarjeta_credito": models.PaymentCreditCard,
	"debit_card": models.PaymentDebitCard, "tarjeta de debito": models.PaymentDebitCard, "tarjeta_debito": models.PaymentDebitCard,
	"check": models.PaymentCheck, "cheque": models.PaymentCheck,
}

func parsePaymentMethod(s string) (models.PaymentMethod, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	if pm, ok := paymentMethods[fold(s)]; ok {
		return pm, nil
	}
	return "", fmt.Errorf("%w: payment method %q", ErrUnknownValue, s)
}

// parseFlag reads SI/NO style booleans; empty yields def.
func parseFlag(s string, def bool) (bool, error) {
	switch fold(s) {
	case "":
		return def, nil
	case "si", "s", "yes", "y", "true", "1", "x":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: flag %q", ErrUnknownValue, s)
}

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
	"02/01/06",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
}

// parseDate reads the day-first dates used in Argentina, ISO dates and
// RFC 3339 timestamps. The result is a UTC calendar date.
func parseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return models.CalendarDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}
