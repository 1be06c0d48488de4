package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/mmo-cavein/internal/app"
	"github.com/annel0/mmo-cavein/internal/cavein"
	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/middleware"
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	serverVersion  = "v0.1.0"
	serviceName    = "rest_api"
	requestTimeout = 5 * time.Second
)

// RestServer представляет REST API сервер администрирования симуляции
type RestServer struct {
	router  *gin.Engine
	server  *http.Server
	engine  *app.Engine
	port    string
	metrics *ServerMetrics
	log     *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string               // порт для запуска сервера
	Engine   *app.Engine          // движок симуляции
	Registry *prometheus.Registry // nil — отдельный реестр
	Logger   *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Engine == nil {
		return nil, errors.New("api: engine is required")
	}
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Logger == nil {
		config.Logger = logging.GetServerLogger()
	}

	// Устанавливаем режим релиза для gin
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	loggerMw := middleware.NewRequestLogger(config.Logger)
	router.Use(loggerMw.Handler())

	router.Use(otelgin.Middleware(serviceName))

	promMw := middleware.NewPrometheusMiddleware(serviceName, config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	rs := &RestServer{
		router:  router,
		engine:  config.Engine,
		port:    config.Port,
		metrics: NewServerMetrics(),
		log:     config.Logger,
	}
	rs.server = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	rs.setupRoutes()
	return rs, nil
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)

	api := rs.router.Group("/api")
	{
		api.GET("/server", rs.handleServerInfo)
		api.GET("/blocks", rs.handleGetBlock)
		api.POST("/blocks/break", rs.handleBreakBlock)
		api.POST("/blocks/explode", rs.handleExplode)
		api.GET("/cavein/evaluate", rs.handleEvaluate)
	}
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PositionRequest: координаты блока в теле запроса
type PositionRequest struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
	Z *int `json:"z" binding:"required"`
}

func (p PositionRequest) Pos() vec.Vec3 {
	return vec.Vec3{X: *p.X, Y: *p.Y, Z: *p.Z}
}

// ExplodeRequest: запрос на взрыв
type ExplodeRequest struct {
	PositionRequest
	Radius int `json:"radius" binding:"min=0"`
}

// BlockInfo описывает блок в ответе API
type BlockInfo struct {
	Pos           vec.Vec3      `json:"pos"`
	ID            block.BlockID `json:"id"`
	Name          string        `json:"name"`
	Unstable      bool          `json:"unstable"`
	Stabilization int           `json:"stabilization"`
	Falling       bool          `json:"falling"`
}

// EvaluateResponse: оценка устойчивости клетки.
// NearestSupportDistance отсутствует, если опора не найдена.
type EvaluateResponse struct {
	Pos                    vec.Vec3                  `json:"pos"`
	Unconnected            bool                      `json:"unconnected"`
	Instability            float64                   `json:"instability"`
	NearestSupportDistance *float64                  `json:"nearest_support_distance,omitempty"`
	Candidates             []cavein.SupportCandidate `json:"candidates"`
	Visited                int                       `json:"visited"`
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, GenericResponse{
		Success: false,
		Message: message,
	})
}

// queryPos читает координаты x, y, z из строки запроса
func queryPos(c *gin.Context) (vec.Vec3, bool) {
	var coords [3]int
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.Atoi(c.Query(name))
		if err != nil {
			badRequest(c, "Неверная координата "+name)
			return vec.Vec3{}, false
		}
		coords[i] = v
	}
	return vec.Vec3{X: coords[0], Y: coords[1], Z: coords[2]}, true
}

// exec выполняет fn в тике движка; при таймауте отвечает 503
func (rs *RestServer) exec(c *gin.Context, fn func()) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := rs.engine.ExecWait(ctx, fn); err != nil {
		rs.log.Warn("Тик движка не ответил: %v", err)
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Движок недоступен",
		})
		return false
	}
	return true
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleServerInfo возвращает информацию о сервере и движке
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data: gin.H{
			"version": serverVersion,
			"name":    "Cave-in Simulation Server",
			"process": rs.metrics.Snapshot(),
			"engine":  rs.engine.Stats(),
			"config":  rs.engine.CaveIn().Config(),
		},
	})
}

func (rs *RestServer) handleGetBlock(c *gin.Context) {
	pos, ok := queryPos(c)
	if !ok {
		return
	}

	var info BlockInfo
	if !rs.exec(c, func() {
		id := rs.engine.World().GetBlock(pos)
		info = BlockInfo{
			Pos:           pos,
			ID:            id,
			Name:          block.NameOf(id),
			Unstable:      block.IsUnstable(id),
			Stabilization: block.StabilizationRating(id),
			Falling:       rs.engine.Falling().HasFallingBlockAt(pos),
		}
	}) {
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Блок получен",
		Data:    info,
	})
}

func (rs *RestServer) handleEvaluate(c *gin.Context) {
	pos, ok := queryPos(c)
	if !ok {
		return
	}

	var res cavein.SearchResult
	if !rs.exec(c, func() { res = rs.engine.Evaluate(pos) }) {
		return
	}

	resp := EvaluateResponse{
		Pos:         pos,
		Unconnected: res.Unconnected,
		Instability: res.Instability,
		Candidates:  res.Candidates,
		Visited:     res.Visited,
	}
	if !math.IsInf(res.NearestSupportDistance, 0) && !math.IsNaN(res.NearestSupportDistance) {
		d := res.NearestSupportDistance
		resp.NearestSupportDistance = &d
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Оценка устойчивости",
		Data:    resp,
	})
}

func (rs *RestServer) handleBreakBlock(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	var res app.BreakResult
	if !rs.exec(c, func() { res = rs.engine.BreakBlock(req.Pos()) }) {
		return
	}
	if !res.Broken {
		c.JSON(http.StatusConflict, GenericResponse{
			Success: false,
			Message: "В клетке нет блока",
		})
		return
	}

	rs.log.Info("Блок %s разрушен в %v, обвал=%v", block.NameOf(res.Block), req.Pos(), res.Collapsed)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Блок разрушен",
		Data:    res,
	})
}

func (rs *RestServer) handleExplode(c *gin.Context) {
	var req ExplodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Неверный формат запроса")
		return
	}

	var (
		res app.ExplodeResult
		err error
	)
	if !rs.exec(c, func() { res, err = rs.engine.Explode(req.Pos(), req.Radius) }) {
		return
	}
	if errors.Is(err, app.ErrInvalidRadius) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Внутренняя ошибка сервера",
		})
		return
	}

	rs.log.Info("Взрыв в %v радиусом %d: уничтожено %d, обвалов %d", req.Pos(), req.Radius, res.Destroyed, res.Collapses)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Взрыв выполнен",
		Data:    res,
	})
}

// Start запускает REST сервер и блокируется до остановки
func (rs *RestServer) Start() error {
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает REST сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.server.Shutdown(ctx)
}
