package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Simple-Accounting-Tools/papa-service/internal/apperr"
	"github.com/Simple-Accounting-Tools/papa-service/internal/models"
	"github.com/Simple-Accounting-Tools/papa-service/internal/utils"
)

type poTestEnv struct {
	db             *mongo.Database
	clientService  IClientService
	vendorService  IVendorService
	productService IProductService
	poService      IPurchaseOrderService
}

func setupPOTestEnv(t *testing.T, dbName string) *poTestEnv {
	db := utils.SetupTestDB(t, dbName,
		clientsCollection, vendorsCollection, productsCollection,
		purchaseOrdersCollection, billsCollection, attachmentsCollection)

	clientService := NewClientService(db)
	vendorService := NewVendorService(db, clientService)
	productService := NewProductService(db, clientService, vendorService)
	attachmentService := NewAttachmentService(db, nil)
	poService := NewPurchaseOrderService(db, clientService, productService, vendorService, attachmentService)

	return &poTestEnv{
		db:             db,
		clientService:  clientService,
		vendorService:  vendorService,
		productService: productService,
		poService:      poService,
	}
}

func (env *poTestEnv) seedCatalog(t *testing.T) (*models.Client, *models.Vendor, *models.Product) {
	ctx := context.Background()
	client, err := env.clientService.Create(ctx, CreateClientInput{
		Name:  "Acme Industries",
		Email: "po-" + primitive.NewObjectID().Hex() + "@acme.test",
	})
	require.NoError(t, err)

	vendor, err := env.vendorService.Create(ctx, CreateVendorInput{
		Name:     "Widget Supply Co",
		Email:    "sales-" + primitive.NewObjectID().Hex() + "@widgets.test",
		ClientID: client.ID,
	})
	require.NoError(t, err)

	product, err := env.productService.Create(ctx, CreateProductInput{
		Name:     "Widget",
		VendorID: vendor.ID,
		ClientID: client.ID,
	})
	require.NoError(t, err)
	return client, vendor, product
}

func TestPurchaseOrderService_Create(t *testing.T) {
	env := setupPOTestEnv(t, "testdb_po_create")
	ctx := context.Background()
	client, vendor, product := env.seedCatalog(t)

	po, err := env.poService.Create(ctx, CreatePurchaseOrderInput{
		VendorID: vendor.ID,
		ClientID: client.ID,
		Items: []LineItemInput{
			{ProductID: product.ID, Description: "Widgets", Quantity: 4, Rate: 25},
		},
		TotalAmount: 100,
		CreatedBy:   primitive.NewObjectID(),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(po.PONumber, "PO-"))
	assert.Len(t, po.PONumber, 11)
	assert.Equal(t, models.POStatusOpen, po.Status)
	assert.Equal(t, 0.0, po.TotalBilled)
	require.Len(t, po.Items, 1)
	assert.Equal(t, 100.0, po.Items[0].Amount)
}

func TestPurchaseOrderService_Create_TotalMismatch(t *testing.T) {
	env := setupPOTestEnv(t, "testdb_po_mismatch")
	ctx := context.Background()
	client, vendor, product := env.seedCatalog(t)

	_, err := env.poService.Create(ctx, CreatePurchaseOrderInput{
		VendorID: vendor.ID,
		ClientID: client.ID,
		Items: []LineItemInput{
			{ProductID: product.ID, Quantity: 4, Rate: 25},
		},
		TotalAmount: 99,
		CreatedBy:   primitive.NewObjectID(),
	})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Total amount mismatch", appErr.Message)
}

func TestPurchaseOrderService_Create_UnknownProduct(t *testing.T) {
	env := setupPOTestEnv(t, "testdb_po_unknown_product")
	ctx := context.Background()
	client, vendor, _ := env.seedCatalog(t)

	missing := primitive.NewObjectID()
	_, err := env.poService.Create(ctx, CreatePurchaseOrderInput{
		VendorID: vendor.ID,
		ClientID: client.ID,
		Items: []LineItemInput{
			{ProductID: missing, Quantity: 1, Rate: 10},
		},
		TotalAmount: 10,
		CreatedBy:   primitive.NewObjectID(),
	})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
	assert.Contains(t, appErr.Message, missing.Hex())
}

func seedPaidBill(t *testing.T, env *poTestEnv, poID, clientID primitive.ObjectID, amount float64) {
	bill := &models.Bill{
		Base:            models.NewBase(),
		PurchaseOrderID: poID,
		ClientID:        clientID,
		BillAmount:      amount,
		RemainingAmount: 0,
		DueDate:         time.Now().UTC(),
		Status:          models.BillStatusPaid,
		Payments:        []primitive.ObjectID{},
	}
	_, err := env.db.Collection(billsCollection).InsertOne(context.Background(), bill)
	require.NoError(t, err)
}

func TestPurchaseOrderService_UpdateStatus_NoPaidBillsIsNoOp(t *testing.T) {
	env := setupPOTestEnv(t, "testdb_po_status_noop")
	ctx := context.Background()
	client, vendor, product := env.seedCatalog(t)

	po, err := env.poService.Create(ctx, CreatePurchaseOrderInput{
		VendorID:    vendor.ID,
		ClientID:    client.ID,
		Items:       []LineItemInput{{ProductID: product.ID, Quantity: 1, Rate: 100}},
		TotalAmount: 100,
		CreatedBy:   primitive.NewObjectID(),
	})
	require.NoError(t, err)

	updated, err := env.poService.UpdateStatus(ctx, po.ID)
	require.NoError(t, err)
	assert.Nil(t, updated)

	// Status stays as-is.
	fetched, err := env.poService.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, models.POStatusOpen, fetched.Status)
}

func TestPurchaseOrderService_UpdateStatus_RollUp(t *testing.T) {
	env := setupPOTestEnv(t, "testdb_po_status_rollup")
	ctx := context.Background()
	client, vendor, product := env.seedCatalog(t)

	po, err := env.poService.Create(ctx, CreatePurchaseOrderInput{
		VendorID:    vendor.ID,
		ClientID:    client.ID,
		Items:       []LineItemInput{{ProductID: product.ID, Quantity: 1, Rate: 100}},
		TotalAmount: 100,
		CreatedBy:   primitive.NewObjectID(),
	})
	require.NoError(t, err)

	seedPaidBill(t, env, po.ID, client.ID, 50)
	updated, err := env.poService.UpdateStatus(ctx, po.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.POStatusPartiallyReceived, updated.Status)
	assert.Equal(t, 50.0, updated.TotalBilled)

	seedPaidBill(t, env, po.ID, client.ID, 50)
	updated, err = env.poService.UpdateStatus(ctx, po.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.POStatusFulfilled, updated.Status)
	assert.Equal(t, 100.0, updated.TotalBilled)

	// Recomputing with no new paid bills changes nothing.
	again, err := env.poService.UpdateStatus(ctx, po.ID)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, models.POStatusFulfilled, again.Status)
	assert.Equal(t, 100.0, again.TotalBilled)
}

func TestPurchaseOrderService_Update_AllowListedFields(t *testing.T) {
	env := setupPOTestEnv(t, "testdb_po_update")
	ctx := context.Background()
	client, vendor, product := env.seedCatalog(t)

	po, err := env.poService.Create(ctx, CreatePurchaseOrderInput{
		VendorID:    vendor.ID,
		ClientID:    client.ID,
		Items:       []LineItemInput{{ProductID: product.ID, Quantity: 2, Rate: 50}},
		TotalAmount: 100,
		CreatedBy:   primitive.NewObjectID(),
	})
	require.NoError(t, err)

	notes := "Rush order"
	shipping := 12.5
	updated, err := env.poService.Update(ctx, po.ID, UpdatePurchaseOrderInput{
		Notes:        &notes,
		ShippingCost: &shipping,
		Items:        []LineItemInput{{ProductID: product.ID, Quantity: 3, Rate: 50}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rush order", updated.Notes)
	assert.Equal(t, 12.5, updated.ShippingCost)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 150.0, updated.Items[0].Amount)
	// Number and status are not client-settable.
	assert.Equal(t, po.PONumber, updated.PONumber)
	assert.Equal(t, models.POStatusOpen, updated.Status)
}
