// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"campusmall/internal/pkg/logger"
	"campusmall/internal/service/order/application"
	"campusmall/internal/service/order/domain"

	pkgerrors "github.com/pkg/errors"
)

// OrderHandler 封装订单服务的全部 HTTP 处理器
type OrderHandler struct {
	service    *application.OrderApplicationService
	reconciler *application.TimeoutReconciler
}

func NewOrderHandler(service *application.OrderApplicationService, reconciler *application.TimeoutReconciler) *OrderHandler {
	return &OrderHandler{service: service, reconciler: reconciler}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/order/create", h.createOrder)
	mux.HandleFunc("/order/payCallback", h.transitionHandler(func(r *http.Request, orderNo string) error {
		payType, _ := strconv.Atoi(r.URL.Query().Get("payType"))
		return h.service.PaySuccess(r.Context(), orderNo, domain.PayType(payType))
	}))
	mux.HandleFunc("/order/ship", h.transitionHandler(func(r *http.Request, orderNo string) error {
		return h.service.Ship(r.Context(), orderNo)
	}))
	mux.HandleFunc("/order/courierAccept", h.transitionHandler(func(r *http.Request, orderNo string) error {
		return h.service.CourierAccept(r.Context(), orderNo)
	}))
	mux.HandleFunc("/order/dispatch", h.transitionHandler(func(r *http.Request, orderNo string) error {
		return h.service.Dispatch(r.Context(), orderNo)
	}))
	mux.HandleFunc("/order/arrive", h.transitionHandler(func(r *http.Request, orderNo string) error {
		return h.service.Arrive(r.Context(), orderNo)
	}))
	mux.HandleFunc("/order/confirm", h.transitionHandler(func(r *http.Request, orderNo string) error {
		return h.service.ConfirmReceive(r.Context(), orderNo)
	}))
	mux.HandleFunc("/order/cancel", h.transitionHandler(func(r *http.Request, orderNo string) error {
		return h.service.CancelOrder(r.Context(), orderNo)
	}))
	mux.HandleFunc("/order/refund/request", h.transitionHandler(func(r *http.Request, orderNo string) error {
		return h.service.RequestRefund(r.Context(), orderNo)
	}))
	mux.HandleFunc("/order/refund/approve", h.transitionHandler(func(r *http.Request, orderNo string) error {
		return h.service.ApproveRefund(r.Context(), orderNo)
	}))

	// job-service 周期调用的内部对账接口
	mux.HandleFunc("/internal/order/cancelTimeoutOrders", h.sweepHandler("minutes", h.reconciler.CancelTimeoutOrders))
	mux.HandleFunc("/internal/order/confirmTimeoutOrders", h.sweepHandler("days", h.reconciler.ConfirmTimeoutOrders))
	mux.HandleFunc("/internal/order/releaseTimeoutLockers", h.sweepHandler("hours", h.reconciler.ReleaseTimeoutLockers))
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := h.extractContext(r)

	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body is not valid json")
		return
	}

	resp, err := h.service.CreateOrder(ctx, &req)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// transitionHandler 是各流转端点的公共骨架：取订单号、执行、统一映射错误
func (h *OrderHandler) transitionHandler(apply func(r *http.Request, orderNo string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(h.extractContext(r))

		orderNo := r.URL.Query().Get("orderNo")
		if orderNo == "" {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "orderNo is required")
			return
		}
		if err := apply(r, orderNo); err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"orderNo": orderNo, "result": "ok"})
	}
}

// sweepHandler 把对账操作暴露为内部接口，响应 {"count": n}
func (h *OrderHandler) sweepHandler(param string, sweep func(ctx context.Context, value int) (*application.SweepResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := h.extractContext(r)

		value, err := strconv.Atoi(r.URL.Query().Get(param))
		if err != nil || value <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", param+" must be a positive integer")
			return
		}

		result, err := sweep(ctx, value)
		if err != nil {
			h.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": result.Transitions})
	}
}

func (h *OrderHandler) extractContext(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

// writeFailure 按错误分类映射响应：
// 领域错误按错误码返回 4xx，其余一律 500 加通用信息，绝不泄漏内部堆栈
func (h *OrderHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if pkgerrors.Is(err, application.ErrSweepInProgress) {
		writeError(w, http.StatusConflict, "SWEEP_IN_PROGRESS", err.Error())
		return
	}
	var de *domain.DomainError
	if pkgerrors.As(err, &de) {
		status := http.StatusBadRequest
		if de.Code == domain.CodeOrderNotFound {
			status = http.StatusNotFound
		}
		if de.Code == domain.CodeOrderConcurrentModify {
			status = http.StatusConflict
		}
		writeError(w, status, de.Code, de.Message)
		return
	}
	logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error in order handler")
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
