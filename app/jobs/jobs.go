// Package jobs defines Bazaar's background jobs: the work the order
// workflow fires and forgets, plus product image thumbnailing.
//
// Each job is a small JSON-serialisable struct. Dependencies (mailer,
// storage disk, repositories) are not part of the payload; the factories
// registered by RegisterAll close over them, and workers populate only the
// exported fields from the queued payload.
package jobs

import (
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/mail"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

// Job names on the wire. Stable: payloads queued by one release must be
// runnable by the next.
const (
	NameSendConfirmationEmail = "send_confirmation_email"
	NameGenerateInvoice       = "generate_invoice"
	NameReduceStock           = "reduce_stock"
	NameCreateThumbnail       = "create_thumbnail"
)

// EventStockChanged is fired with the product ID after a successful stock
// decrement, so caches keyed on the listing can drop it.
const EventStockChanged = "product.stock_changed"

// Deps carries the collaborators the jobs need at execution time.
type Deps struct {
	Mailer   mail.Mailer
	Disk     storage.Disk
	Products *repositories.ProductRepository
}

// RegisterAll registers every job factory with the queue manager.
func RegisterAll(m *queue.Manager, deps Deps) {
	m.Register(NameSendConfirmationEmail, func() queue.Job {
		return &SendConfirmationEmail{mailer: deps.Mailer}
	})
	m.Register(NameGenerateInvoice, func() queue.Job {
		return &GenerateInvoice{disk: deps.Disk}
	})
	m.Register(NameReduceStock, func() queue.Job {
		return &ReduceStock{products: deps.Products}
	})
	m.Register(NameCreateThumbnail, func() queue.Job {
		return &CreateThumbnail{disk: deps.Disk}
	})
}
