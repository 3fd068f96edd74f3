package jobs

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func TestSendConfirmationEmail(t *testing.T) {
	mailer := &fakeMailer{}
	job := &SendConfirmationEmail{Email: "buyer@example.com", OrderID: 42, mailer: mailer}

	require.NoError(t, job.Handle())
	require.Equal(t, []string{"buyer@example.com"}, mailer.sent)
}

func TestSendConfirmationEmail_PropagatesError(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	job := &SendConfirmationEmail{Email: "buyer@example.com", OrderID: 42, mailer: mailer}

	err := job.Handle()
	require.Error(t, err)
	require.False(t, queue.IsTerminal(err)) // SMTP outages are retryable
}

func TestGenerateInvoice_WritesPDFOnce(t *testing.T) {
	disk := storage.NewLocal(t.TempDir(), "/files")
	job := &GenerateInvoice{
		OrderID:       7,
		CustomerEmail: "buyer@example.com",
		ProductName:   "Laptop",
		Quantity:      2,
		TotalPrice:    1999.98,
		disk:          disk,
	}

	require.NoError(t, job.Handle())

	path := InvoicePath(7)
	require.True(t, disk.Exists(path))

	data, err := disk.Get(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	// Second run finds the file and leaves it alone.
	require.NoError(t, disk.Put(path, []byte("sentinel")))
	require.NoError(t, job.Handle())
	data, err = disk.Get(path)
	require.NoError(t, err)
	require.Equal(t, []byte("sentinel"), data)
}

func TestReduceStock(t *testing.T) {
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	product := models.Product{Name: "Laptop", Price: 10, Stock: 3, SellerID: 1}
	require.NoError(t, db.Create(&product).Error)

	products := repositories.NewProductRepository(db)

	job := &ReduceStock{ProductID: product.ID, Quantity: 2, products: products}
	require.NoError(t, job.Handle())

	got, err := products.FindByID(product.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Stock)

	// Oversell is terminal, not retryable.
	job = &ReduceStock{ProductID: product.ID, Quantity: 5, products: products}
	err = job.Handle()
	require.Error(t, err)
	require.True(t, queue.IsTerminal(err))
	require.ErrorIs(t, err, repositories.ErrInsufficientStock)

	// Missing product is terminal too.
	job = &ReduceStock{ProductID: 9999, Quantity: 1, products: products}
	err = job.Handle()
	require.Error(t, err)
	require.True(t, queue.IsTerminal(err))
}

func TestReduceStock_AnnouncesStockChange(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	product := models.Product{Name: "Laptop", Price: 10, Stock: 3, SellerID: 1}
	require.NoError(t, db.Create(&product).Error)
	products := repositories.NewProductRepository(db)

	var changed []interface{}
	event.Listen(EventStockChanged, func(payload interface{}) {
		changed = append(changed, payload)
	})

	job := &ReduceStock{ProductID: product.ID, Quantity: 2, products: products}
	require.NoError(t, job.Handle())
	require.Equal(t, []interface{}{product.ID}, changed)

	// A failed decrement must not announce anything.
	job = &ReduceStock{ProductID: product.ID, Quantity: 5, products: products}
	require.Error(t, job.Handle())
	require.Len(t, changed, 1)
}

func TestCreateThumbnail(t *testing.T) {
	disk := storage.NewLocal(t.TempDir(), "/files")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 800, 600))))
	require.NoError(t, disk.Put("products/1.png", buf.Bytes()))

	job := &CreateThumbnail{
		SourcePath:    "products/1.png",
		ThumbnailPath: "products/1_thumb.png",
		disk:          disk,
	}
	require.NoError(t, job.Handle())

	data, err := disk.Get("products/1_thumb.png")
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 200, img.Bounds().Dx())
	require.Equal(t, 150, img.Bounds().Dy())
}

func TestRegisterAllWiresEveryJob(t *testing.T) {
	mgr := queue.NewManager(queue.NewMemoryDriver())
	RegisterAll(mgr, Deps{Mailer: &fakeMailer{}, Disk: storage.NewLocal(t.TempDir(), "/files")})

	for _, job := range []queue.Job{
		&SendConfirmationEmail{},
		&GenerateInvoice{},
		&ReduceStock{},
		&CreateThumbnail{},
	} {
		require.NoError(t, mgr.Dispatch(job))
	}
}
