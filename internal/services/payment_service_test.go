package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/config"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/utils"
)

type paymentTestEnv struct {
	db             *mongo.Database
	cfg            *config.Config
	clientService  IClientService
	poService      IPurchaseOrderService
	billService    IBillService
	paymentService IPaymentService
}

func setupPaymentTestEnv(t *testing.T, dbName string) *paymentTestEnv {
	db := utils.SetupTestDB(t, dbName,
		clientsCollection, vendorsCollection, productsCollection,
		purchaseOrdersCollection, billsCollection, paymentsCollection,
		paymentTypesCollection, expenseCategoriesCollection, attachmentsCollection)

	cfg := &config.Config{
		DiscountWindowDays: 10,
		DiscountRate:       0.02,
	}
	clientService := NewClientService(db)
	vendorService := NewVendorService(db, clientService)
	productService := NewProductService(db, clientService, vendorService)
	categoryService := NewExpenseCategoryService(db)
	paymentTypeService := NewPaymentTypeService(db, clientService)
	attachmentService := NewAttachmentService(db, nil)
	poService := NewPurchaseOrderService(db, clientService, productService, vendorService, attachmentService)
	billService := NewBillService(db, clientService, poService, categoryService, attachmentService)
	paymentService := NewPaymentService(db, cfg, clientService, billService, paymentTypeService, attachmentService)

	return &paymentTestEnv{
		db:             db,
		cfg:            cfg,
		clientService:  clientService,
		poService:      poService,
		billService:    billService,
		paymentService: paymentService,
	}
}

// seedClientAndPO inserts a client and a purchase order directly, bypassing
// the product validation in the PO create path.
func (env *paymentTestEnv) seedClientAndPO(t *testing.T, totalAmount float64) (*models.Client, *models.PurchaseOrder) {
	ctx := context.Background()
	client, err := env.clientService.Create(ctx, CreateClientInput{
		Name:  "Acme Industries",
		Email: "ap-" + primitive.NewObjectID().Hex() + "@acme.test",
	})
	require.NoError(t, err)

	po := &models.PurchaseOrder{
		Base:        models.NewBase(),
		PONumber:    generatePONumber(),
		VendorID:    primitive.NewObjectID(),
		ClientID:    client.ID,
		TotalAmount: totalAmount,
		Status:      models.POStatusOpen,
		CreatedBy:   primitive.NewObjectID(),
	}
	_, err = env.db.Collection(purchaseOrdersCollection).InsertOne(ctx, po)
	require.NoError(t, err)
	return client, po
}

func (env *paymentTestEnv) seedBill(t *testing.T, client *models.Client, po *models.PurchaseOrder, amount float64) *models.Bill {
	bill, err := env.billService.Create(context.Background(), CreateBillInput{
		PurchaseOrderID: po.ID,
		ClientID:        client.ID,
		BillAmount:      amount,
		DueDate:         time.Now().UTC().Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return bill
}

func TestPaymentService_Create_FullPaymentEarnsDiscount(t *testing.T) {
	env := setupPaymentTestEnv(t, "testdb_payment_full_discount")
	ctx := context.Background()
	client, po := env.seedClientAndPO(t, 200)
	bill := env.seedBill(t, client, po, 200)

	payment, err := env.paymentService.Create(ctx, CreatePaymentInput{
		BillID:        bill.ID,
		ClientID:      client.ID,
		Amount:        200,
		PaymentMethod: models.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)

	assert.Equal(t, 4.0, payment.Discount)
	assert.Equal(t, 196.0, payment.Amount)
	assert.Equal(t, models.BillStatusPaid, payment.Status)

	// The bill balance drops by net amount and discount separately.
	updatedBill, err := env.billService.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, updatedBill.RemainingAmount)
	assert.Equal(t, models.BillStatusPaid, updatedBill.Status)
	assert.Equal(t, []primitive.ObjectID{payment.ID}, updatedBill.Payments)

	// Paying the bill in full rolls the PO up to fulfilled.
	updatedPO, err := env.poService.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, models.POStatusFulfilled, updatedPO.Status)
	assert.Equal(t, 200.0, updatedPO.TotalBilled)
}

func TestPaymentService_Create_PartialPaymentNoDiscount(t *testing.T) {
	env := setupPaymentTestEnv(t, "testdb_payment_partial")
	ctx := context.Background()
	client, po := env.seedClientAndPO(t, 200)
	bill := env.seedBill(t, client, po, 200)

	payment, err := env.paymentService.Create(ctx, CreatePaymentInput{
		BillID:        bill.ID,
		ClientID:      client.ID,
		Amount:        100,
		PaymentMethod: models.PaymentMethodCheck,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, payment.Discount)
	assert.Equal(t, 100.0, payment.Amount)
	assert.Equal(t, models.BillStatusUnpaid, payment.Status)

	// The bill keeps its unpaid status while anything is still owed.
	updatedBill, err := env.billService.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, updatedBill.RemainingAmount)
	assert.Equal(t, models.BillStatusUnpaid, updatedBill.Status)

	// No paid bills yet, so the PO status is untouched.
	updatedPO, err := env.poService.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, models.POStatusOpen, updatedPO.Status)
}

func TestPaymentService_Create_RejectsSettledBill(t *testing.T) {
	env := setupPaymentTestEnv(t, "testdb_payment_settled")
	ctx := context.Background()
	client, po := env.seedClientAndPO(t, 200)
	bill := env.seedBill(t, client, po, 200)

	_, err := env.paymentService.Create(ctx, CreatePaymentInput{
		BillID:        bill.ID,
		ClientID:      client.ID,
		Amount:        200,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	_, err = env.paymentService.Create(ctx, CreatePaymentInput{
		BillID:        bill.ID,
		ClientID:      client.ID,
		Amount:        10,
		PaymentMethod: models.PaymentMethodCash,
	})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
	assert.Equal(t, "Bill does not have any due amount", appErr.Message)
}

func TestPaymentService_Create_RejectsOverpayment(t *testing.T) {
	env := setupPaymentTestEnv(t, "testdb_payment_overpay")
	ctx := context.Background()
	client, po := env.seedClientAndPO(t, 200)
	bill := env.seedBill(t, client, po, 200)

	_, err := env.paymentService.Create(ctx, CreatePaymentInput{
		BillID:        bill.ID,
		ClientID:      client.ID,
		Amount:        200.01,
		PaymentMethod: models.PaymentMethodCard,
	})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
	assert.Equal(t, "Payment amount cannot exceed 200", appErr.Message)
}

func TestPaymentService_Create_InvalidMethodRejected(t *testing.T) {
	env := setupPaymentTestEnv(t, "testdb_payment_bad_method")
	ctx := context.Background()
	client, po := env.seedClientAndPO(t, 200)
	bill := env.seedBill(t, client, po, 200)

	_, err := env.paymentService.Create(ctx, CreatePaymentInput{
		BillID:        bill.ID,
		ClientID:      client.ID,
		Amount:        50,
		PaymentMethod: "barter",
	})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestPaymentService_CreateMany_StopsOnFirstFailure(t *testing.T) {
	env := setupPaymentTestEnv(t, "testdb_payment_bulk")
	ctx := context.Background()
	client, po := env.seedClientAndPO(t, 300)
	billA := env.seedBill(t, client, po, 100)
	billB := env.seedBill(t, client, po, 100)

	created, err := env.paymentService.CreateMany(ctx, []CreatePaymentInput{
		{BillID: billA.ID, ClientID: client.ID, Amount: 100, PaymentMethod: models.PaymentMethodCash},
		{BillID: primitive.NewObjectID(), ClientID: client.ID, Amount: 50, PaymentMethod: models.PaymentMethodCash},
		{BillID: billB.ID, ClientID: client.ID, Amount: 100, PaymentMethod: models.PaymentMethodCash},
	})
	require.Error(t, err)
	// The first payment survives, the third was never attempted.
	require.Len(t, created, 1)
	assert.Equal(t, billA.ID, created[0].BillID)

	untouched, err := env.billService.FindByID(ctx, billB.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusUnpaid, untouched.Status)
}

func TestPaymentService_Delete_DoesNotReverseBill(t *testing.T) {
	env := setupPaymentTestEnv(t, "testdb_payment_delete")
	ctx := context.Background()
	client, po := env.seedClientAndPO(t, 200)
	bill := env.seedBill(t, client, po, 200)

	payment, err := env.paymentService.Create(ctx, CreatePaymentInput{
		BillID:        bill.ID,
		ClientID:      client.ID,
		Amount:        200,
		PaymentMethod: models.PaymentMethodACH,
	})
	require.NoError(t, err)

	require.NoError(t, env.paymentService.Delete(ctx, payment.ID))

	// Deletion removes the record only; the bill keeps its settled state.
	count, err := env.db.Collection(paymentsCollection).CountDocuments(ctx, bson.M{"_id": payment.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	updatedBill, err := env.billService.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusPaid, updatedBill.Status)
	assert.Equal(t, []primitive.ObjectID{payment.ID}, updatedBill.Payments)
}
