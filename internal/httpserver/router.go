package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"fluxo-storefront/internal/domain"
	authsvc "fluxo-storefront/internal/service/auth"
	checkoutsvc "fluxo-storefront/internal/service/checkout"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type productService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type categoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type cartService interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Add(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	Update(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type authService interface {
	Login(ctx context.Context, email, password string) (*authsvc.Session, error)
	Register(ctx context.Context, name, email, password string) (*authsvc.Session, error)
	Authenticate(ctx context.Context, token string) (domain.Profile, error)
}

type checkoutService interface {
	Get(ctx context.Context, sess checkoutsvc.Session) (*checkoutsvc.View, error)
	UpdateBuyer(ctx context.Context, sess checkoutsvc.Session, patch checkoutsvc.BuyerPatch) (*checkoutsvc.View, error)
	UpdateCard(ctx context.Context, sess checkoutsvc.Session, patch checkoutsvc.CardPatch) (*checkoutsvc.View, error)
	SelectMethod(ctx context.Context, sess checkoutsvc.Session, method domain.PaymentMethod) (*checkoutsvc.View, error)
	Back(ctx context.Context, sess checkoutsvc.Session) (*checkoutsvc.View, error)
	Advance(ctx context.Context, sess checkoutsvc.Session) (*checkoutsvc.View, error)
	Retry(ctx context.Context, sess checkoutsvc.Session) (*checkoutsvc.View, error)
	ChooseAnotherMethod(ctx context.Context, sess checkoutsvc.Session) (*checkoutsvc.View, error)
}

type notificationInbox interface {
	Drain(sessionID string) []domain.Notification
}

// Deps groups the services behind the routes.
type Deps struct {
	ProductSvc    productService
	CategorySvc   categoryService
	CartSvc       cartService
	AuthSvc       authService
	CheckoutSvc   checkoutService
	Notifications notificationInbox
	ReadyChecks   []ReadyCheck
	CORSOrigins   []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.ProductSvc == nil || deps.CategorySvc == nil || deps.CartSvc == nil || deps.AuthSvc == nil || deps.CheckoutSvc == nil || deps.Notifications == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.ReadyChecks))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)

	auth := router.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/register", h.register)
	auth.GET("/me", requireAuth(deps.AuthSvc), h.me)

	session := router.Group("/", sessionMiddleware())
	session.GET("/cart", h.getCart)
	session.POST("/cart/items", h.addCartItem)
	session.PATCH("/cart/items/:productId", h.updateCartItem)
	session.DELETE("/cart/items/:productId", h.removeCartItem)
	session.DELETE("/cart", h.clearCart)
	session.GET("/notifications", h.drainNotifications)

	checkout := session.Group("/checkout", requireAuth(deps.AuthSvc))
	checkout.GET("", h.getCheckout)
	checkout.PATCH("/buyer", h.updateBuyer)
	checkout.PATCH("/card", h.updateCard)
	checkout.PUT("/method", h.selectMethod)
	checkout.POST("/advance", h.advanceCheckout)
	checkout.POST("/back", h.checkoutAction(deps.CheckoutSvc.Back))
	checkout.POST("/retry", h.checkoutAction(deps.CheckoutSvc.Retry))
	checkout.POST("/change-method", h.checkoutAction(deps.CheckoutSvc.ChooseAnotherMethod))

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", sessionHeader},
		ExposeHeaders: []string{sessionHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
