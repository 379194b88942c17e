package router

import (
	"time"

	"cafebook/internal/auth"
	"cafebook/internal/config"
	"cafebook/internal/handler"
	"cafebook/internal/infra"
	"cafebook/internal/middleware"
	"cafebook/internal/model"
	"cafebook/internal/repository"
	"cafebook/internal/service"
	"cafebook/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the long-lived resources built in main and shared by every route.
type Deps struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	Tokens      *auth.TokenService
	Dispatcher  *worker.Dispatcher
	Publisher   service.EventPublisher // nil disables invoice events
	MailBreaker *infra.Breaker
	Registry    *prometheus.Registry // nil skips /metrics
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps) (*gin.Engine, error) {
	cfg := d.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	loc := cfg.Location()

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Handler())
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	employeeRepo := repository.NewEmployeeRepository(d.DB)
	permissionRepo := repository.NewPermissionRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	voucherRepo := repository.NewVoucherRepository(d.DB)
	invoiceRepo := repository.NewInvoiceRepository(d.DB)
	statisticsRepo := repository.NewStatisticsRepository(d.DB)
	ingredientRepo := repository.NewIngredientRepository(d.DB)
	bookRepo := repository.NewBookRepository(d.DB)
	attendanceRepo := repository.NewAttendanceRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	otps := infra.NewOTPStore(d.Redis, cfg.OTPTTL())
	productCache := infra.NewJSONCache(d.Redis, "product:", cfg.ProductCacheTTL())

	authSvc := service.NewAuthService(employeeRepo, d.Tokens, otps, d.Dispatcher)
	employeeSvc := service.NewEmployeeService(employeeRepo)
	permissionSvc := service.NewPermissionService(permissionRepo)
	productSvc := service.NewProductService(productRepo, repository.NewPriceHistoryRepository(d.DB), productCache)
	voucherSvc := service.NewVoucherService(voucherRepo)
	orderSvc := service.NewOrderService(invoiceRepo, employeeRepo, productRepo, voucherRepo, d.Publisher, d.Dispatcher, loc)
	statisticsSvc := service.NewStatisticsService(statisticsRepo, loc)
	ingredientSvc := service.NewIngredientService(ingredientRepo)
	bookSvc := service.NewBookService(bookRepo)
	attendanceSvc, err := service.NewAttendanceService(attendanceRepo, service.AttendancePolicy{
		OfficeLat:    cfg.OfficeLat,
		OfficeLng:    cfg.OfficeLng,
		RadiusMeters: cfg.AttendanceRadiusMeters,
		ShiftStart:   cfg.ShiftStart,
		LateGrace:    time.Duration(cfg.LateGraceMinutes) * time.Minute,
		Location:     loc,
	})
	if err != nil {
		return nil, err
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	employeesH := handler.NewEmployeesHandler(employeeSvc)
	permissionsH := handler.NewPermissionsHandler(permissionSvc)
	productsH := handler.NewProductsHandler(productSvc)
	vouchersH := handler.NewVouchersHandler(voucherSvc)
	invoicesH := handler.NewInvoicesHandler(orderSvc)
	statisticsH := handler.NewStatisticsHandler(statisticsSvc)
	ingredientsH := handler.NewIngredientsHandler(ingredientSvc)
	booksH := handler.NewBooksHandler(bookSvc)
	attendanceH := handler.NewAttendanceHandler(attendanceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.MailBreaker))
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	authPublic := r.Group("/v1/auth")
	{
		authPublic.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		authPublic.POST("/refresh", authH.Refresh)
		authPublic.POST("/forgot-password", middleware.LoginRateLimiter(), authH.ForgotPassword)
		authPublic.POST("/verify-otp", middleware.LoginRateLimiter(), authH.VerifyOTP)
		authPublic.POST("/reset-password", middleware.LoginRateLimiter(), authH.ResetPassword)
	}

	// Protected routes
	need := func(code string) gin.HandlerFunc { return middleware.RequirePermission(permissionSvc, code) }
	v1 := r.Group("/v1", middleware.JWTAuth(auth.NewAuthenticator(d.Tokens)))
	{
		v1.POST("/auth/change-password", authH.ChangePassword)
		v1.GET("/me", employeesH.Me)
		v1.GET("/me/permissions", permissionsH.Mine)
		v1.POST("/permissions/check", permissionsH.Check)

		emp := v1.Group("/employees")
		{
			emp.POST("", need(model.PermEmployeeCreate), employeesH.Register)
			emp.GET("", need(model.PermEmployeeView), employeesH.List)
			emp.GET("/:id", need(model.PermEmployeeView), employeesH.Get)
			emp.PUT("/:id", need(model.PermEmployeeUpdate), employeesH.Update)
		}
		v1.GET("/roles", need(model.PermEmployeeView), employeesH.Roles)

		// Catalog reads are open to anyone who can take orders.
		v1.GET("/products", need(model.PermProductView), productsH.List)
		v1.GET("/products/:id", need(model.PermProductView), productsH.Get)
		v1.GET("/products/:id/price-history", need(model.PermProductManage), productsH.PriceHistory)
		prods := v1.Group("/products", need(model.PermProductManage))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
		}

		v1.GET("/vouchers", need(model.PermProductView), vouchersH.List)
		v1.GET("/vouchers/:id", need(model.PermProductView), vouchersH.Get)
		vouchers := v1.Group("/vouchers", need(model.PermVoucherManage))
		{
			vouchers.POST("", vouchersH.Create)
			vouchers.PUT("/:id", vouchersH.Update)
			vouchers.DELETE("/:id", vouchersH.Delete)
		}

		v1.POST("/orders", need(model.PermOrderCreate), invoicesH.CreateOrder)
		inv := v1.Group("/invoices")
		{
			inv.POST("", need(model.PermOrderCreate), invoicesH.CreateInvoice)
			inv.POST("/:id/lines", need(model.PermOrderCreate), invoicesH.AppendLines)
			inv.GET("", need(model.PermInvoiceView), invoicesH.List)
			inv.GET("/:id", need(model.PermInvoiceView), invoicesH.Get)
			inv.GET("/:id/receipt", need(model.PermInvoiceView), invoicesH.Receipt)
			inv.POST("/:id/receipt/email", need(model.PermInvoiceView), invoicesH.EmailReceipt)
		}

		stats := v1.Group("/statistics", need(model.PermStatisticsView))
		{
			stats.GET("", statisticsH.Report)
			stats.GET("/export", statisticsH.Export)
		}

		ingredients := v1.Group("/ingredients", need(model.PermInventoryManage))
		{
			ingredients.POST("", ingredientsH.Create)
			ingredients.GET("", ingredientsH.List)
			ingredients.GET("/:id", ingredientsH.Get)
			ingredients.PUT("/:id", ingredientsH.Update)
			ingredients.DELETE("/:id", ingredientsH.Delete)
		}

		books := v1.Group("/books", need(model.PermBookManage))
		{
			books.POST("", booksH.Create)
			books.GET("", booksH.List)
			books.GET("/:id", booksH.Get)
			books.PUT("/:id", booksH.Update)
			books.DELETE("/:id", booksH.Delete)
		}
		genres := v1.Group("/genres", need(model.PermBookManage))
		{
			genres.POST("", booksH.CreateGenre)
			genres.GET("", booksH.ListGenres)
			genres.PUT("/:id", booksH.UpdateGenre)
			genres.DELETE("/:id", booksH.DeleteGenre)
		}

		// Any employee may check in; reading the log is gated.
		v1.POST("/attendance/check-in", attendanceH.CheckIn)
		v1.GET("/attendance", need(model.PermAttendanceView), attendanceH.List)
	}

	return r, nil
}
