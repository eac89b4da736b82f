package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/email"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/storage"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// Background task types.
const (
	TypeEmailDelivery   = "email:deliver"
	TypeBookingDecision = "booking:decision:notify"
	TypeImageNormalize  = "image:normalize"
	TypeIntentSweep     = "payment:intent:sweep"
)

// EmailTaskPayload asks the worker to render a mail template and deliver it.
type EmailTaskPayload struct {
	To         string            `json:"to"`
	TemplateID string            `json:"template_id"`
	Locale     string            `json:"locale,omitempty"`
	Data       map[string]string `json:"data"`
}

// BookingDecisionPayload carries just the booking id; the worker resolves the
// rest so the API does not block on joins when a status flips.
type BookingDecisionPayload struct {
	BookingID string `json:"booking_id"`
}

// ImageTaskPayload identifies an uploaded creative to normalize.
type ImageTaskPayload struct {
	S3Key string `json:"s3_key"`
	AdID  string `json:"ad_id"`
}

// Client enqueues background tasks. It also implements services.INotifier so
// the booking service can hand off decision notifications.
type Client struct {
	asynq *asynq.Client
}

// NewClient creates a task client sharing the app's Redis connection settings.
func NewClient(rdb *redis.Client) *Client {
	opt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return &Client{asynq: asynq.NewClient(opt)}
}

// Close releases the underlying asynq client.
func (c *Client) Close() error {
	return c.asynq.Close()
}

// EnqueueEmail queues a templated email for delivery.
func (c *Client) EnqueueEmail(ctx context.Context, payload EmailTaskPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	_, err = c.asynq.EnqueueContext(ctx, asynq.NewTask(TypeEmailDelivery, data), asynq.Queue("default"))
	if err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	return nil
}

// NotifyBookingDecision queues a decision notification for the booking's viewer.
func (c *Client) NotifyBookingDecision(ctx context.Context, booking *models.Booking) error {
	data, err := json.Marshal(BookingDecisionPayload{BookingID: booking.ID.String()})
	if err != nil {
		return fmt.Errorf("failed to marshal booking decision payload: %w", err)
	}
	_, err = c.asynq.EnqueueContext(ctx, asynq.NewTask(TypeBookingDecision, data), asynq.Queue("critical"))
	if err != nil {
		return fmt.Errorf("failed to enqueue booking decision task: %w", err)
	}
	return nil
}

// EnqueueImageNormalize queues normalization of an uploaded creative.
func (c *Client) EnqueueImageNormalize(ctx context.Context, s3Key, adID string) error {
	data, err := json.Marshal(ImageTaskPayload{S3Key: s3Key, AdID: adID})
	if err != nil {
		return fmt.Errorf("failed to marshal image task payload: %w", err)
	}
	_, err = c.asynq.EnqueueContext(ctx, asynq.NewTask(TypeImageNormalize, data), asynq.Queue("images"))
	if err != nil {
		return fmt.Errorf("failed to enqueue image task: %w", err)
	}
	return nil
}

// EnqueueIntentSweep schedules the next payment intent reconciliation run.
func (c *Client) EnqueueIntentSweep(ctx context.Context, in time.Duration) error {
	_, err := c.asynq.EnqueueContext(ctx, asynq.NewTask(TypeIntentSweep, nil),
		asynq.Queue("low"), asynq.ProcessIn(in), asynq.MaxRetry(1))
	if err != nil {
		return fmt.Errorf("failed to schedule intent sweep: %w", err)
	}
	return nil
}

// Processor holds the dependencies task handlers need.
type Processor struct {
	cfg        *config.Config
	sender     email.Sender
	templates  services.IMailTemplateService
	users      services.IUserService
	ads        services.IAdService
	bookings   services.IBookingService
	intents    services.IPaymentIntentService
	storage    storage.IS3Storage
	taskClient *Client
}

// NewProcessor creates a task processor.
func NewProcessor(
	cfg *config.Config,
	sender email.Sender,
	templates services.IMailTemplateService,
	users services.IUserService,
	ads services.IAdService,
	bookings services.IBookingService,
	intents services.IPaymentIntentService,
	s3 storage.IS3Storage,
	taskClient *Client,
) *Processor {
	return &Processor{
		cfg:        cfg,
		sender:     sender,
		templates:  templates,
		users:      users,
		ads:        ads,
		bookings:   bookings,
		intents:    intents,
		storage:    s3,
		taskClient: taskClient,
	}
}

// NewServer configures an asynq server for the given worker modes and returns
// it with its handler mux. Returns nil when no worker mode is active.
func NewServer(rdb *redis.Client, processor *Processor, bgWorker, imageWorker bool) (*asynq.Server, *asynq.ServeMux) {
	if !bgWorker && !imageWorker {
		return nil, nil
	}
	opt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"images":   5,
			"low":      1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("[asynq] task %s failed: %v", task.Type(), err)
		}),
	})

	mux := asynq.NewServeMux()
	if bgWorker {
		mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDelivery)
		mux.HandleFunc(TypeBookingDecision, processor.HandleBookingDecision)
		mux.HandleFunc(TypeIntentSweep, processor.HandleIntentSweep)
		log.Println("Registered background task handlers")
	}
	if imageWorker {
		mux.HandleFunc(TypeImageNormalize, processor.HandleImageNormalize)
		log.Println("Registered image processing task handlers")
	}
	return srv, mux
}

// HandleEmailDelivery renders a mail template and delivers it.
func (p *Processor) HandleEmailDelivery(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}

	subject, body, err := p.templates.Render(ctx, payload.TemplateID, payload.Locale, payload.Data)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("mail template %s not found: %w", payload.TemplateID, asynq.SkipRetry)
		}
		return err
	}
	return p.sender.Send(ctx, []string{payload.To}, subject, body)
}

// HandleBookingDecision notifies the viewer that their booking was confirmed
// or rejected.
func (p *Processor) HandleBookingDecision(ctx context.Context, t *asynq.Task) error {
	var payload BookingDecisionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal booking decision payload: %v: %w", err, asynq.SkipRetry)
	}
	bookingID, err := utils.ParseSixID(payload.BookingID)
	if err != nil {
		return fmt.Errorf("invalid booking id %q: %w", payload.BookingID, asynq.SkipRetry)
	}

	booking, err := p.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("booking %s no longer exists: %w", payload.BookingID, asynq.SkipRetry)
		}
		return err
	}

	var templateID string
	switch booking.Status {
	case models.StatusConfirmed:
		templateID = services.TemplateBookingConfirmed
	case models.StatusRejected:
		templateID = services.TemplateBookingRejected
	default:
		// Still pending; nothing to tell the viewer yet
		return nil
	}

	viewer, err := p.users.FindByID(ctx, booking.ClientID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("viewer of booking %s no longer exists: %w", payload.BookingID, asynq.SkipRetry)
		}
		return err
	}

	adTitle := ""
	if ad, adErr := p.ads.FindByID(ctx, booking.AdID); adErr == nil {
		adTitle = ad.Title
	}

	subject, body, err := p.templates.Render(ctx, templateID, "en", map[string]string{
		"FirstName": viewer.FirstName,
		"AdTitle":   adTitle,
		"StartTime": booking.StartTime.Format("2006-01-02 15:04 MST"),
		"EndTime":   booking.EndTime.Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return err
	}
	return p.sender.Send(ctx, []string{viewer.Email}, subject, body)
}

// HandleIntentSweep expires stale payment intents and schedules the next run.
// The sweep is the safety net for orders that were created or verified but
// whose booking never arrived.
func (p *Processor) HandleIntentSweep(ctx context.Context, t *asynq.Task) error {
	swept, err := p.intents.ExpireStale(ctx, p.cfg.PaymentIntentTTL)
	if err != nil {
		return err
	}
	if swept > 0 {
		log.Printf("Expired %d stale payment intents", swept)
	}
	if p.taskClient != nil {
		if err := p.taskClient.EnqueueIntentSweep(ctx, p.cfg.IntentSweepEvery); err != nil {
			log.Printf("Failed to schedule next intent sweep: %v", err)
		}
	}
	return nil
}

// HandleImageNormalize downloads an uploaded creative, caps its dimensions,
// and writes the JPEG back under the same key.
func (p *Processor) HandleImageNormalize(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	obj, err := p.storage.GetObject(ctx, payload.S3Key)
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return fmt.Errorf("creative %s not found in storage: %w", payload.S3Key, asynq.SkipRetry)
		}
		return err
	}
	defer obj.Body.Close()

	raw, err := io.ReadAll(obj.Body)
	if err != nil {
		return fmt.Errorf("failed to read creative %s: %w", payload.S3Key, err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("creative %s is not a decodable image: %w", payload.S3Key, asynq.SkipRetry)
	}

	maxDim := uint(p.cfg.ImageMaxDimension)
	if uint(img.Bounds().Dx()) <= maxDim && uint(img.Bounds().Dy()) <= maxDim {
		log.Printf("Creative %s (%s, %dx%d) within limits, no resize needed",
			payload.S3Key, format, img.Bounds().Dx(), img.Bounds().Dy())
		return nil
	}

	resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode resized creative %s: %w", payload.S3Key, err)
	}
	if err := p.storage.PutObject(ctx, payload.S3Key, "image/jpeg", buf.Bytes()); err != nil {
		return err
	}
	log.Printf("Normalized creative %s to %dx%d", payload.S3Key, resized.Bounds().Dx(), resized.Bounds().Dy())
	return nil
}
