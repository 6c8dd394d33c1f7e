package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BillServiceName is the fully-qualified name of the BillService.
const BillServiceName = "billsplit.v1.BillService"

// Procedure paths of the BillService.
const (
	CreateBillProcedure           = "/" + BillServiceName + "/CreateBill"
	GetBillProcedure              = "/" + BillServiceName + "/GetBill"
	ListBillsProcedure            = "/" + BillServiceName + "/ListBills"
	UpdateBillProcedure           = "/" + BillServiceName + "/UpdateBill"
	DeleteBillProcedure           = "/" + BillServiceName + "/DeleteBill"
	DuplicateBillProcedure        = "/" + BillServiceName + "/DuplicateBill"
	ExportBillProcedure           = "/" + BillServiceName + "/ExportBill"
	AddItemProcedure              = "/" + BillServiceName + "/AddItem"
	EditItemProcedure             = "/" + BillServiceName + "/EditItem"
	RemoveItemProcedure           = "/" + BillServiceName + "/RemoveItem"
	AddPersonProcedure            = "/" + BillServiceName + "/AddPerson"
	AddPersonFromContactProcedure = "/" + BillServiceName + "/AddPersonFromContact"
	EditPersonProcedure           = "/" + BillServiceName + "/EditPerson"
	RemovePersonProcedure         = "/" + BillServiceName + "/RemovePerson"
	SetPaidProcedure              = "/" + BillServiceName + "/SetPaid"
	AssignWholeProcedure          = "/" + BillServiceName + "/AssignWhole"
	SplitEquallyProcedure         = "/" + BillServiceName + "/SplitEqually"
	CustomSplitProcedure          = "/" + BillServiceName + "/CustomSplit"
	RemoveSplitProcedure          = "/" + BillServiceName + "/RemoveSplit"
	ClearAllSplitsProcedure       = "/" + BillServiceName + "/ClearAllSplits"
	CreateContactProcedure        = "/" + BillServiceName + "/CreateContact"
	ListContactsProcedure         = "/" + BillServiceName + "/ListContacts"
	EditContactProcedure          = "/" + BillServiceName + "/EditContact"
	DeleteContactProcedure        = "/" + BillServiceName + "/DeleteContact"
)

// NewBillServiceHandler builds an HTTP handler serving every BillService
// procedure, and returns the path prefix to mount it on.
func NewBillServiceHandler(svc *BillService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()

	handle(mux, CreateBillProcedure, svc.CreateBill, opts)
	handle(mux, GetBillProcedure, svc.GetBill, opts)
	handle(mux, ListBillsProcedure, svc.ListBills, opts)
	handle(mux, UpdateBillProcedure, svc.UpdateBill, opts)
	handle(mux, DeleteBillProcedure, svc.DeleteBill, opts)
	handle(mux, DuplicateBillProcedure, svc.DuplicateBill, opts)
	handle(mux, ExportBillProcedure, svc.ExportBill, opts)
	handle(mux, AddItemProcedure, svc.AddItem, opts)
	handle(mux, EditItemProcedure, svc.EditItem, opts)
	handle(mux, RemoveItemProcedure, svc.RemoveItem, opts)
	handle(mux, AddPersonProcedure, svc.AddPerson, opts)
	handle(mux, AddPersonFromContactProcedure, svc.AddPersonFromContact, opts)
	handle(mux, EditPersonProcedure, svc.EditPerson, opts)
	handle(mux, RemovePersonProcedure, svc.RemovePerson, opts)
	handle(mux, SetPaidProcedure, svc.SetPaid, opts)
	handle(mux, AssignWholeProcedure, svc.AssignWhole, opts)
	handle(mux, SplitEquallyProcedure, svc.SplitEqually, opts)
	handle(mux, CustomSplitProcedure, svc.CustomSplit, opts)
	handle(mux, RemoveSplitProcedure, svc.RemoveSplit, opts)
	handle(mux, ClearAllSplitsProcedure, svc.ClearAllSplits, opts)
	handle(mux, CreateContactProcedure, svc.CreateContact, opts)
	handle(mux, ListContactsProcedure, svc.ListContacts, opts)
	handle(mux, EditContactProcedure, svc.EditContact, opts)
	handle(mux, DeleteContactProcedure, svc.DeleteContact, opts)

	return "/" + BillServiceName + "/", mux
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// BillServiceClient calls a BillService over HTTP with the JSON codec.
type BillServiceClient struct {
	httpClient connect.HTTPClient
	baseURL    string
	opts       []connect.ClientOption
}

// NewBillServiceClient creates a client for the BillService at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	return &BillServiceClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...),
	}
}

func call[Req, Res any](ctx context.Context, c *BillServiceClient, procedure string, req *Req) (*Res, error) {
	client := connect.NewClient[Req, Res](c.httpClient, c.baseURL+procedure, c.opts...)
	resp, err := client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *BillServiceClient) CreateBill(ctx context.Context, req *CreateBillRequest) (*BillDetail, error) {
	return call[CreateBillRequest, BillDetail](ctx, c, CreateBillProcedure, req)
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *BillRequest) (*BillDetail, error) {
	return call[BillRequest, BillDetail](ctx, c, GetBillProcedure, req)
}

func (c *BillServiceClient) ListBills(ctx context.Context, req *ListBillsRequest) (*ListBillsResponse, error) {
	return call[ListBillsRequest, ListBillsResponse](ctx, c, ListBillsProcedure, req)
}

func (c *BillServiceClient) UpdateBill(ctx context.Context, req *UpdateBillRequest) (*BillDetail, error) {
	return call[UpdateBillRequest, BillDetail](ctx, c, UpdateBillProcedure, req)
}

func (c *BillServiceClient) DeleteBill(ctx context.Context, req *BillRequest) (*Empty, error) {
	return call[BillRequest, Empty](ctx, c, DeleteBillProcedure, req)
}

func (c *BillServiceClient) DuplicateBill(ctx context.Context, req *BillRequest) (*BillDetail, error) {
	return call[BillRequest, BillDetail](ctx, c, DuplicateBillProcedure, req)
}

func (c *BillServiceClient) ExportBill(ctx context.Context, req *BillRequest) (*ExportResponse, error) {
	return call[BillRequest, ExportResponse](ctx, c, ExportBillProcedure, req)
}

func (c *BillServiceClient) AddItem(ctx context.Context, req *AddItemRequest) (*BillDetail, error) {
	return call[AddItemRequest, BillDetail](ctx, c, AddItemProcedure, req)
}

func (c *BillServiceClient) EditItem(ctx context.Context, req *EditItemRequest) (*BillDetail, error) {
	return call[EditItemRequest, BillDetail](ctx, c, EditItemProcedure, req)
}

func (c *BillServiceClient) RemoveItem(ctx context.Context, req *ItemRequest) (*BillDetail, error) {
	return call[ItemRequest, BillDetail](ctx, c, RemoveItemProcedure, req)
}

func (c *BillServiceClient) AddPerson(ctx context.Context, req *AddPersonRequest) (*BillDetail, error) {
	return call[AddPersonRequest, BillDetail](ctx, c, AddPersonProcedure, req)
}

func (c *BillServiceClient) AddPersonFromContact(ctx context.Context, req *AddPersonFromContactRequest) (*BillDetail, error) {
	return call[AddPersonFromContactRequest, BillDetail](ctx, c, AddPersonFromContactProcedure, req)
}

func (c *BillServiceClient) EditPerson(ctx context.Context, req *EditPersonRequest) (*BillDetail, error) {
	return call[EditPersonRequest, BillDetail](ctx, c, EditPersonProcedure, req)
}

func (c *BillServiceClient) RemovePerson(ctx context.Context, req *PersonRequest) (*BillDetail, error) {
	return call[PersonRequest, BillDetail](ctx, c, RemovePersonProcedure, req)
}

func (c *BillServiceClient) SetPaid(ctx context.Context, req *SetPaidRequest) (*BillDetail, error) {
	return call[SetPaidRequest, BillDetail](ctx, c, SetPaidProcedure, req)
}

func (c *BillServiceClient) AssignWhole(ctx context.Context, req *AssignWholeRequest) (*BillDetail, error) {
	return call[AssignWholeRequest, BillDetail](ctx, c, AssignWholeProcedure, req)
}

func (c *BillServiceClient) SplitEqually(ctx context.Context, req *SplitEquallyRequest) (*BillDetail, error) {
	return call[SplitEquallyRequest, BillDetail](ctx, c, SplitEquallyProcedure, req)
}

func (c *BillServiceClient) CustomSplit(ctx context.Context, req *CustomSplitRequest) (*BillDetail, error) {
	return call[CustomSplitRequest, BillDetail](ctx, c, CustomSplitProcedure, req)
}

func (c *BillServiceClient) RemoveSplit(ctx context.Context, req *SplitRequest) (*BillDetail, error) {
	return call[SplitRequest, BillDetail](ctx, c, RemoveSplitProcedure, req)
}

func (c *BillServiceClient) ClearAllSplits(ctx context.Context, req *ItemRequest) (*BillDetail, error) {
	return call[ItemRequest, BillDetail](ctx, c, ClearAllSplitsProcedure, req)
}

func (c *BillServiceClient) CreateContact(ctx context.Context, req *CreateContactRequest) (*Person, error) {
	return call[CreateContactRequest, Person](ctx, c, CreateContactProcedure, req)
}

func (c *BillServiceClient) ListContacts(ctx context.Context) (*ListContactsResponse, error) {
	return call[Empty, ListContactsResponse](ctx, c, ListContactsProcedure, &Empty{})
}

func (c *BillServiceClient) EditContact(ctx context.Context, req *EditPersonRequest) (*Person, error) {
	return call[EditPersonRequest, Person](ctx, c, EditContactProcedure, req)
}

func (c *BillServiceClient) DeleteContact(ctx context.Context, req *ContactRequest) (*Empty, error) {
	return call[ContactRequest, Empty](ctx, c, DeleteContactProcedure, req)
}
