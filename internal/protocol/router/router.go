package router

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/lk2023060901/streamplane-go/internal/protocol/api"
	"github.com/lk2023060901/streamplane-go/internal/protocol/codec"
	"github.com/lk2023060901/streamplane-go/pkg/log"
	"github.com/lk2023060901/streamplane-go/pkg/metrics"
	"github.com/lk2023060901/streamplane-go/pkg/util/conc"
	"github.com/lk2023060901/streamplane-go/pkg/util/merr"
)

// Handler 是暴露给控制面的请求处理函数签名。
//
//   - header：已解码的消息头，req 按 header.ApiVersion 解码；
//   - req   ：由 Route.NewRequest 创建并完成解码的请求；
//   - 返回的 resp 会以同一 correlation id、同一版本编码后返回给对端。
type Handler func(ctx context.Context, header api.RequestHeader, req api.Request) (resp codec.Value, err error)

// Route 描述一条路由规则：api key -> 请求类型 + Handler。
type Route struct {
	// NewRequest 用于创建一个带默认值的请求对象，api key 取自该对象。
	NewRequest func() api.Request

	// Handler 为控制面实现的处理函数。
	Handler Handler
}

// Router 维护 api key 到路由规则的映射，并负责从“帧内容”到 Handler 的完整调度流程。
//
// 典型调用链（服务器侧）：
//  1. Framer 从底层连接读出一帧；
//  2. 上层调用 Router.Handle(ctx, frame)；
//  3. Router 解码消息头，根据 api key 找到 Route：
//     - NewRequest() 创建请求对象；
//     - 校验版本范围后按消息头版本解码；
//     - 调用 Handler(ctx, header, req)；
//     - 将响应连同 correlation id 编码后返回。
type Router interface {
	// Register 注册一条路由规则，同一 api key 不允许重复注册。
	Register(route Route) error

	// Handle 处理一帧请求，返回编码后的响应帧内容。
	Handle(ctx context.Context, frame []byte) ([]byte, error)

	// HandleBatch 并发处理相互独立的多帧请求，结果与输入一一对应。
	HandleBatch(ctx context.Context, frames [][]byte) []Result

	// Descriptors 返回全部已注册请求的 API 描述，按注册顺序排列。
	Descriptors() []api.Descriptor
}

// Result 为 HandleBatch 中单帧的处理结果。
type Result struct {
	Response []byte
	Err      error
}

// defaultRouter 是 Router 接口的基础实现。
//
// Register 必须在开始 Handle 之前全部完成，之后路由表只读。
type defaultRouter struct {
	log.Binder

	routes map[uint16]Route
	order  []uint16
	pool   *conc.Pool[[]byte]
}

// 编译期断言：确保 defaultRouter 实现了 Router 接口。
var _ Router = (*defaultRouter)(nil)

// New 创建一个 Router，poolSize 为 HandleBatch 使用的协程数，<= 0 时为 GOMAXPROCS。
func New(poolSize int) Router {
	var pool *conc.Pool[[]byte]
	if poolSize > 0 {
		pool = conc.NewPool[[]byte](poolSize, conc.WithConcealPanic(true))
	} else {
		pool = conc.NewDefaultPool[[]byte](conc.WithConcealPanic(true))
	}
	r := &defaultRouter{
		routes: make(map[uint16]Route),
		pool:   pool,
	}
	r.BindComponent("router")
	return r
}

// Register 实现 Router.Register。
func (r *defaultRouter) Register(route Route) error {
	if route.NewRequest == nil {
		return merr.WrapErrParameterMissing("NewRequest")
	}
	if route.Handler == nil {
		return merr.WrapErrParameterMissing("Handler")
	}
	req := route.NewRequest()
	if req == nil {
		return merr.WrapErrParameterInvalidMsg("NewRequest returned nil")
	}
	apiKey := req.ApiKey()
	if _, exists := r.routes[apiKey]; exists {
		return merr.WrapErrRouteRegistered(apiKey)
	}
	r.routes[apiKey] = route
	r.order = append(r.order, apiKey)
	r.Logger().Debug("route registered", log.FieldApiKey(apiKey), zap.String("request", api.Describe(req).Name))
	return nil
}

// Descriptors 实现 Router.Descriptors。
func (r *defaultRouter) Descriptors() []api.Descriptor {
	out := make([]api.Descriptor, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, api.Describe(r.routes[key].NewRequest()))
	}
	return out
}

// Handle 实现 Router.Handle。
func (r *defaultRouter) Handle(ctx context.Context, frame []byte) ([]byte, error) {
	src := codec.NewCursor(frame)

	var header api.RequestHeader
	if err := header.Decode(src, 0); err != nil {
		metrics.DecodeFailures.WithLabelValues("unknown").Inc()
		return nil, err
	}
	apiLabel := strconv.Itoa(int(header.ApiKey))
	ctx = log.WithFields(ctx, header.Fields()...)
	logger := log.Ctx(ctx)

	route, ok := r.routes[header.ApiKey]
	if !ok {
		logger.Warn("no route for api key")
		return nil, merr.WrapErrRouteNotFound(header.ApiKey)
	}

	// 1. 构造请求对象并解码。
	req := route.NewRequest()
	ctx, span := log.StartSpan(ctx, "router", api.Describe(req).Name)
	defer span.End()
	if err := api.DecodeRequestBody(src, header, req); err != nil {
		metrics.DecodeFailures.WithLabelValues(apiLabel).Inc()
		logger.WithRateGroup("router.decode", 1, 60).RatedWarn(1, "decode request failed", zap.Error(err))
		return nil, err
	}
	metrics.CodecBytes.WithLabelValues(apiLabel, metrics.DecodeDirection).Observe(float64(len(frame)))

	// 2. 调用 Handler。
	resp, err := route.Handler(ctx, header, req)
	if err != nil {
		logger.Warn("handle request failed", zap.Error(err))
		return nil, err
	}
	if resp == nil {
		resp = req.NewResponse()
	}

	// 3. 以请求版本编码响应。
	out, err := codec.Marshal(&api.ResponseMessage{CorrelationID: header.CorrelationID, Response: resp}, header.ApiVersion)
	if err != nil {
		return nil, err
	}
	metrics.CodecBytes.WithLabelValues(apiLabel, metrics.EncodeDirection).Observe(float64(len(out)))
	return out, nil
}

// HandleBatch 实现 Router.HandleBatch。
func (r *defaultRouter) HandleBatch(ctx context.Context, frames [][]byte) []Result {
	futures := make([]*conc.Future[[]byte], 0, len(frames))
	for _, frame := range frames {
		futures = append(futures, r.pool.Submit(func() ([]byte, error) {
			return r.Handle(ctx, frame)
		}))
	}
	results := make([]Result, len(frames))
	for i, future := range futures {
		results[i].Response, results[i].Err = future.Await()
	}
	return results
}
