package ledger

import (
	"strings"

	"github.com/google/uuid"
)

// ticketCodePrefix is prepended to every generated ticket code.  The
// format is TKT- followed by the first eight hex characters of a random
// UUID, uppercased, e.g. "TKT-3F9A1C44".
const ticketCodePrefix = "TKT-"

// newTicketCode generates one candidate ticket code.  Uniqueness is not
// guaranteed here; the ledger checks the candidate against the set of
// codes it has ever issued and regenerates on collision.
func newTicketCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ticketCodePrefix + strings.ToUpper(raw[:8])
}
