package service

import (
	"context"
	"encoding/json"
	"sync"

	"creator-funnel/internal/client"
)

type fakeClubzila struct {
	mu sync.Mutex

	createErr   error
	createRef   int64
	lookupErr   error
	lookupRef   int64
	paymentErr  error
	paymentTxID string
	active      bool
	checkErr    error

	createCalls  int
	lookupCalls  int
	paymentCalls int
	checkCalls   int
	lastPayment  *client.PaymentRequest
}

func newFakeClubzila() *fakeClubzila {
	return &fakeClubzila{createRef: 107, lookupRef: 108, paymentTxID: "tx-1"}
}

func (f *fakeClubzila) CreateAccount(_ context.Context, phone, name string) (*client.ClubzilaAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &client.ClubzilaAccount{Ref: f.createRef}, nil
}

func (f *fakeClubzila) LookupAccount(_ context.Context, phone string) (*client.ClubzilaAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return &client.ClubzilaAccount{Ref: f.lookupRef}, nil
}

func (f *fakeClubzila) TriggerPayment(_ context.Context, req *client.PaymentRequest) (*client.PaymentResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paymentCalls++
	f.lastPayment = req
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return &client.PaymentResult{
		TransactionID: f.paymentTxID,
		Status:        "pending",
		Raw:           json.RawMessage(`{"transaction_id":"` + f.paymentTxID + `"}`),
	}, nil
}

func (f *fakeClubzila) CheckSubscription(_ context.Context, accountRef, creatorRef int64, phone string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkCalls++
	return f.active, f.checkErr
}
