package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Simple-Accounting-Tools/papa-service/internal/config"
	"github.com/Simple-Accounting-Tools/papa-service/internal/email"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
)

// Task types.
const (
	TypePaymentConfirmEmail = "payment:confirm_email"
	TypeBillOverdueCheck    = "bill:check_overdue"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	})
}

// PaymentConfirmPayload carries the data for the confirmation email task.
type PaymentConfirmPayload struct {
	PaymentID string `json:"payment_id"`
}

// NewPaymentConfirmationTask builds the task enqueued after a payment is
// recorded.
func NewPaymentConfirmationTask(paymentID primitive.ObjectID) (*asynq.Task, error) {
	payload, err := json.Marshal(PaymentConfirmPayload{PaymentID: paymentID.Hex()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment confirmation payload: %w", err)
	}
	return asynq.NewTask(TypePaymentConfirmEmail, payload), nil
}

// NewOverdueCheckTask builds the periodic overdue-bill sweep task.
func NewOverdueCheckTask() *asynq.Task {
	return asynq.NewTask(TypeBillOverdueCheck, nil)
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	emailSender    email.Sender
	paymentService services.IPaymentService
	billService    services.IBillService
	poService      services.IPurchaseOrderService
	vendorService  services.IVendorService
	clientService  services.IClientService
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	paymentService services.IPaymentService,
	billService services.IBillService,
	poService services.IPurchaseOrderService,
	vendorService services.IVendorService,
	clientService services.IClientService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		emailSender:    emailSender,
		paymentService: paymentService,
		billService:    billService,
		poService:      poService,
		vendorService:  vendorService,
		clientService:  clientService,
	}
}

// SetupServer configures an Asynq server and registers the task handlers.
// The caller is responsible for running the returned server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePaymentConfirmEmail, processor.HandlePaymentConfirmEmailTask)
	mux.HandleFunc(TypeBillOverdueCheck, processor.HandleBillOverdueCheckTask)

	return srv, mux
}

// --- Task Handlers ---

// HandlePaymentConfirmEmailTask sends the payment confirmation email to the
// client that recorded the payment.
func (p *TaskProcessor) HandlePaymentConfirmEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload PaymentConfirmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payment confirmation payload: %v: %w", err, asynq.SkipRetry)
	}

	paymentID, err := primitive.ObjectIDFromHex(payload.PaymentID)
	if err != nil {
		log.Printf("Invalid PaymentID in confirmation task payload: %s", payload.PaymentID)
		return fmt.Errorf("invalid payment ID in payload: %w", asynq.SkipRetry)
	}

	payment, err := p.paymentService.FindByID(ctx, paymentID)
	if err != nil {
		log.Printf("Error fetching payment %s for confirmation email: %v", payload.PaymentID, err)
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("payment not found: %w", asynq.SkipRetry)
		}
		return err
	}

	client, err := p.clientService.FindByID(ctx, payment.ClientID)
	if err != nil {
		log.Printf("Error fetching client %s for confirmation email: %v", payment.ClientID.Hex(), err)
		return err
	}

	bill, err := p.billService.FindByID(ctx, payment.BillID)
	if err != nil {
		log.Printf("Error fetching bill %s for confirmation email: %v", payment.BillID.Hex(), err)
		return err
	}

	po, err := p.poService.FindByID(ctx, bill.PurchaseOrderID)
	if err != nil {
		log.Printf("Error fetching purchase order %s for confirmation email: %v", bill.PurchaseOrderID.Hex(), err)
		return err
	}

	vendor, err := p.vendorService.FindByID(ctx, po.VendorID)
	if err != nil {
		log.Printf("Error fetching vendor %s for confirmation email: %v", po.VendorID.Hex(), err)
		return err
	}

	subject := fmt.Sprintf("%s: payment received", p.cfg.AppName)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hi %s,\r\n\r\n", client.Name))
	sb.WriteString(fmt.Sprintf("We have recorded your payment of %.2f to %s against %s", payment.Amount, vendor.Name, po.PONumber))
	if payment.Discount > 0 {
		sb.WriteString(fmt.Sprintf(" (early payment discount applied: %.2f)", payment.Discount))
	}
	sb.WriteString(".\r\n")
	sb.WriteString(fmt.Sprintf("Remaining balance on the bill: %.2f (%s).\r\n", bill.RemainingAmount, bill.Status))
	sb.WriteString("\r\nThank you.\r\n")

	rawMessage := email.BuildMessage(p.cfg.SmtpFromAddress, []string{client.Email}, subject, sb.String())
	if err := p.emailSender.Send(ctx, []string{client.Email}, subject, rawMessage); err != nil {
		log.Printf("Payment confirmation email to %s failed: %v", client.Email, err)
		return err
	}

	log.Printf("Payment confirmation email task processed: Payment=%s, To=%s", payload.PaymentID, client.Email)
	return nil
}

// HandleBillOverdueCheckTask sweeps for bills past their due date and
// notifies the owning client once per bill.
func (p *TaskProcessor) HandleBillOverdueCheckTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting overdue bill check task...")

	overdue, err := p.billService.FindOverdue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Error querying overdue bills: %v", err)
		return err
	}
	if len(overdue) == 0 {
		log.Println("No overdue bills found.")
		return nil
	}

	notified := make([]primitive.ObjectID, 0, len(overdue))
	for _, bill := range overdue {
		client, err := p.clientService.FindByID(ctx, bill.ClientID)
		if err != nil {
			log.Printf("Error fetching client %s for overdue bill %s: %v. Skipping.", bill.ClientID.Hex(), bill.ID.Hex(), err)
			continue
		}

		subject := fmt.Sprintf("%s: bill overdue", p.cfg.AppName)
		body := fmt.Sprintf(
			"Hi %s,\r\n\r\nBill %s for %.2f was due on %s and has %.2f outstanding.\r\n\r\nPlease arrange payment.\r\n",
			client.Name, bill.ID.Hex(), bill.BillAmount, bill.DueDate.Format("2006-01-02"), bill.RemainingAmount,
		)
		rawMessage := email.BuildMessage(p.cfg.SmtpFromAddress, []string{client.Email}, subject, body)
		if err := p.emailSender.Send(ctx, []string{client.Email}, subject, rawMessage); err != nil {
			log.Printf("Overdue notice to %s for bill %s failed: %v. Skipping.", client.Email, bill.ID.Hex(), err)
			continue
		}
		notified = append(notified, bill.ID)
	}

	if err := p.billService.MarkOverdueNotified(ctx, notified); err != nil {
		return err
	}
	log.Printf("Overdue bill check finished. Notified %d of %d bills.", len(notified), len(overdue))
	return nil
}
