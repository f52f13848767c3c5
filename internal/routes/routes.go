package routes

import (
	"net/http"

	"github.com/mycloudbox/mycloudbox/internal/app"
	"github.com/mycloudbox/mycloudbox/internal/handler"
	"github.com/mycloudbox/mycloudbox/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	account := handler.NewAccountHandler(app.AuthService, app.UserService)
	files := handler.NewFileHandler(app.FileService, app.Cfg.UploadMaxSize)
	folders := handler.NewFolderHandler(app.FolderService)
	share := handler.NewShareHandler(app.FileService, app.Cfg.AppName)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)

	// Share links: readable by anyone holding the file id
	shareLimiter := middleware.RateLimitShare()
	mux.HandleFunc("GET /s/{id}", shareLimiter(share.SharePage))
	mux.HandleFunc("GET /api/files/public/{id}", shareLimiter(files.Public))

	// Objects of the in-memory gateway (STORAGE_DRIVER=memory)
	if objects, ok := app.Gateway.(http.Handler); ok {
		mux.Handle("GET /storage/{key...}", objects)
	}

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /api/auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))

	// OAuth
	mux.HandleFunc("GET /api/auth/{provider}", auth.OAuthRedirect)
	mux.HandleFunc("GET /api/auth/{provider}/callback", auth.OAuthCallback)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Account
	mux.HandleFunc("DELETE /api/account", middleware.RequireAuth(account.DeleteAccount))

	// Files
	mux.HandleFunc("POST /api/files/upload", middleware.RequireAuth(files.Upload))
	mux.HandleFunc("GET /api/files/my-files", middleware.RequireAuth(files.MyFiles))
	mux.HandleFunc("GET /api/files/unfiled", middleware.RequireAuth(files.Unfiled))
	mux.HandleFunc("GET /api/files/folder/{folderId}", middleware.RequireAuth(files.ByFolder))
	mux.HandleFunc("GET /api/files/download/{id}", middleware.RequireAuth(files.Download))
	mux.HandleFunc("PUT /api/files/move/{id}", middleware.RequireAuth(files.Move))
	mux.HandleFunc("DELETE /api/files/{id}", middleware.RequireAuth(files.Delete))

	// Folders
	mux.HandleFunc("POST /api/folders/create", middleware.RequireAuth(folders.Create))
	mux.HandleFunc("GET /api/folders/my-folders", middleware.RequireAuth(folders.MyFolders))
	mux.HandleFunc("PUT /api/folders/rename/{id}", middleware.RequireAuth(folders.Rename))
	mux.HandleFunc("DELETE /api/folders/{id}", middleware.RequireAuth(folders.Delete))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg),  // Config must be first (needed by SecurityHeaders for the storage origin)
		middleware.NonceMiddleware,  // Generate CSP nonce for each request (must be before SecurityHeaders)
		middleware.SecurityHeaders,  // Security headers for all responses (XSS, clickjacking, etc.)
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
		middleware.CSRFProtection, // Needs to know whether the cookie authenticated the request
	)

	return handler
}
