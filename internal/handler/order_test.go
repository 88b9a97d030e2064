package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/dto"
)

func decodeOrder(t *testing.T, rec *httptest.ResponseRecorder) (dto.OrderResponse, apiResponse) {
	t.Helper()
	var data struct {
		Order dto.OrderResponse `json:"order"`
	}
	resp := decodeData(t, rec, &data)
	return data.Order, resp
}

func orderPath(id uint, action string) string {
	if action == "" {
		return fmt.Sprintf("/orders/%d", id)
	}
	return fmt.Sprintf("/orders/%d/%s", id, action)
}

func TestOrderLifecycleOnOffer(t *testing.T) {
	env := newEnv(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	carol := env.createUser(t, "Carol")
	env.approveProvider(t, bob.ID)
	env.approveProvider(t, carol.ID)
	offer := env.createEvent(t, bob.ID, constants.EventTypeOffer, "Guitar lessons")

	aliceToken, bobToken, carolToken := env.token(t, alice), env.token(t, bob), env.token(t, carol)

	rec := env.do(t, http.MethodPost, "/orders", bobToken, map[string]any{"event_id": offer.ID})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, constants.ErrMsgOwnEvent, decode(t, rec).Error)

	rec = env.do(t, http.MethodPost, "/orders", aliceToken, map[string]any{"event_id": offer.ID, "note": "  weekends  "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order, resp := decodeOrder(t, rec)
	assert.Equal(t, constants.MsgSuccessOrderCreated, resp.Message)
	assert.Equal(t, constants.OrderPending, order.Status)
	assert.Equal(t, alice.ID, order.ConsumerID)
	assert.Equal(t, "Alice", order.ConsumerName)
	require.NotNil(t, order.ProviderID)
	assert.Equal(t, bob.ID, *order.ProviderID)
	assert.Equal(t, offer.Price, order.Price)
	assert.Equal(t, "weekends", order.Note)
	assert.Equal(t, "Guitar lessons", order.EventTitle)

	rec = env.do(t, http.MethodPost, "/orders", aliceToken, map[string]any{"event_id": offer.ID})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, constants.ErrMsgDuplicateOpenOrder, decode(t, rec).Error)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "accept"), carolToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, constants.ErrMsgNotAssignedProvider, decode(t, rec).Error)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "complete"), aliceToken, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "accept"), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order, resp = decodeOrder(t, rec)
	assert.Equal(t, constants.MsgSuccessOrderAccepted, resp.Message)
	assert.Equal(t, constants.OrderAccepted, order.Status)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "accept"), bobToken, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "complete"), bobToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "complete"), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order, _ = decodeOrder(t, rec)
	assert.Equal(t, constants.OrderCompleted, order.Status)
	assert.NotNil(t, order.FinishTime)

	var provider db.Provider
	require.NoError(t, env.db.Take(&provider, bob.ID).Error)
	assert.Equal(t, 1, provider.OrderCount)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "cancel"), aliceToken, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, constants.ErrMsgOrderStateConflict, decode(t, rec).Error)

	// a finished order frees the slot for a new one
	rec = env.do(t, http.MethodPost, "/orders", aliceToken, map[string]any{"event_id": offer.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, []string{
		`Your order "Guitar lessons" was created, please wait for the provider to confirm.`,
		`Your order "Guitar lessons" was accepted by Bob, please keep in touch.`,
		`Your order "Guitar lessons" is completed, please review the provider.`,
		`Your order "Guitar lessons" was created, please wait for the provider to confirm.`,
	}, env.systemMessages(t, alice.ID))
	assert.Equal(t, []string{
		`You accepted the order "Guitar lessons".`,
		`Order "Guitar lessons" is completed, please review the requester.`,
	}, env.systemMessages(t, bob.ID))
}

func TestOrderLifecycleOnRequest(t *testing.T) {
	env := newEnv(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	dave := env.createUser(t, "Dave")
	env.approveProvider(t, bob.ID)
	request := env.createEvent(t, alice.ID, constants.EventTypeRequest, "Move a sofa")

	aliceToken, bobToken, daveToken := env.token(t, alice), env.token(t, bob), env.token(t, dave)

	rec := env.do(t, http.MethodPost, "/orders", bobToken, map[string]any{"event_id": request.ID})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, constants.ErrMsgOnlyCreatorOrders, decode(t, rec).Error)

	rec = env.do(t, http.MethodPost, "/orders", aliceToken, map[string]any{"event_id": 9999})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/orders", aliceToken, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/orders", aliceToken, map[string]any{"event_id": request.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order, _ := decodeOrder(t, rec)
	assert.Nil(t, order.ProviderID)
	assert.Nil(t, order.ProviderName)

	t.Run("open orders", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/orders/open", bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var open []dto.OrderResponse
		decodeData(t, rec, &open)
		require.Len(t, open, 1)
		assert.Equal(t, order.ID, open[0].ID)

		rec = env.do(t, http.MethodGet, "/orders/open", aliceToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		open = nil
		decodeData(t, rec, &open)
		assert.Empty(t, open)
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, orderPath(order.ID, ""), bobToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodGet, "/orders/31337", bobToken, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "accept"), aliceToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, constants.ErrMsgCannotAcceptOwnOrder, decode(t, rec).Error)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "accept"), daveToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, constants.ErrMsgProviderNotVerified, decode(t, rec).Error)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "accept"), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order, _ = decodeOrder(t, rec)
	require.NotNil(t, order.ProviderID)
	assert.Equal(t, bob.ID, *order.ProviderID)
	require.NotNil(t, order.ProviderName)
	assert.Equal(t, "Bob", *order.ProviderName)

	rec = env.do(t, http.MethodGet, orderPath(order.ID, ""), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/orders/open", daveToken, nil)
	var open []dto.OrderResponse
	decodeData(t, rec, &open)
	assert.Empty(t, open)
}

func TestPutOrder(t *testing.T) {
	env := newEnv(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	offer := env.createEvent(t, bob.ID, constants.EventTypeOffer, "Cleaning")
	bobID := bob.ID
	order := db.Order{EventID: offer.ID, ConsumerID: alice.ID, ProviderID: &bobID, Price: 30}
	require.NoError(t, env.db.Create(&order).Error)

	rec := env.do(t, http.MethodPut, orderPath(order.ID, ""), env.token(t, alice), map[string]any{"price": 10})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, ""), env.token(t, bob), map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, constants.ErrMsgNoFieldsToUpdate, decode(t, rec).Error)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, ""), env.token(t, bob), map[string]any{"price": -5})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, ""), env.token(t, bob),
		map[string]any{"price": 45.5, "note": "bring a mop", "service_time": "2026-11-01T09:00:00Z"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated, resp := decodeOrder(t, rec)
	assert.Equal(t, constants.MsgSuccessOrderUpdated, resp.Message)
	assert.Equal(t, 45.5, updated.Price)
	assert.Equal(t, "bring a mop", updated.Note)
	require.NotNil(t, updated.ServiceTime)
	assert.Equal(t, 2026, updated.ServiceTime.Year())

	assert.Contains(t, env.systemMessages(t, alice.ID), `Your order "Cleaning" was modified by the provider, please check it.`)
}

func TestCancelOrder(t *testing.T) {
	env := newEnv(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	eve := env.createUser(t, "Eve")
	offer := env.createEvent(t, bob.ID, constants.EventTypeOffer, "Tutoring")
	bobID := bob.ID
	order := db.Order{EventID: offer.ID, ConsumerID: alice.ID, ProviderID: &bobID, Status: constants.OrderAccepted}
	require.NoError(t, env.db.Create(&order).Error)

	rec := env.do(t, http.MethodPut, orderPath(order.ID, "cancel"), env.token(t, eve), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "cancel"), env.token(t, bob), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled, resp := decodeOrder(t, rec)
	assert.Equal(t, constants.MsgSuccessOrderCancelled, resp.Message)
	assert.Equal(t, constants.OrderCancelled, cancelled.Status)

	rec = env.do(t, http.MethodPut, orderPath(order.ID, "cancel"), env.token(t, alice), nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPut, "/orders/404404/cancel", env.token(t, alice), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, constants.ErrMsgOrderNotFound, decode(t, rec).Error)

	assert.Equal(t, []string{`Your order "Tutoring" was cancelled.`}, env.systemMessages(t, alice.ID))
	assert.Empty(t, env.systemMessages(t, bob.ID))
}

func TestGetOrders(t *testing.T) {
	env := newEnv(t)
	alice := env.createUser(t, "Alice")
	bob := env.createUser(t, "Bob")
	aliceOffer := env.createEvent(t, alice.ID, constants.EventTypeOffer, "Alice offer")
	bobOffer := env.createEvent(t, bob.ID, constants.EventTypeOffer, "Bob offer")

	aliceID, bobID := alice.ID, bob.ID
	asConsumer := db.Order{EventID: bobOffer.ID, ConsumerID: alice.ID, ProviderID: &bobID, Status: constants.OrderCompleted}
	asProvider := db.Order{EventID: aliceOffer.ID, ConsumerID: bob.ID, ProviderID: &aliceID, Status: constants.OrderPending}
	require.NoError(t, env.db.Create(&asConsumer).Error)
	require.NoError(t, env.db.Create(&asProvider).Error)

	token := env.token(t, alice)
	tests := []struct {
		name     string
		query    string
		wantCode int
		wantIDs  []uint
	}{
		{"all", "", http.StatusOK, []uint{asProvider.ID, asConsumer.ID}},
		{"consumer", "?role=consumer", http.StatusOK, []uint{asConsumer.ID}},
		{"provider", "?role=provider", http.StatusOK, []uint{asProvider.ID}},
		{"completed", "?status=2", http.StatusOK, []uint{asConsumer.ID}},
		{"provider pending", "?role=provider&status=0", http.StatusOK, []uint{asProvider.ID}},
		{"cancelled", "?status=3", http.StatusOK, []uint{}},
		{"bad role", "?role=admin", http.StatusBadRequest, nil},
		{"bad status", "?status=7", http.StatusBadRequest, nil},
		{"text status", "?status=done", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/orders"+tt.query, token, nil)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}

			var orders []dto.OrderResponse
			decodeData(t, rec, &orders)
			ids := make([]uint, 0, len(orders))
			for _, o := range orders {
				ids = append(ids, o.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
