package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobreport/internal/auth"
	"jobreport/internal/httpserver/handlers"
	"jobreport/internal/models"
)

func NewRouter(db *gorm.DB, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Use(Syslogger(db, lg))

		api.Post("/auth/signup", handlers.Signup(db, lg))
		api.Post("/auth/signin", handlers.Signin(db, lg))
		api.Post("/auth/refresh", handlers.Refresh(db, lg))

		api.Group(func(protected chi.Router) {
			protected.Use(auth.JWTAuth())

			protected.Post("/auth/signout", handlers.Signout(db))
			protected.Get("/me", handlers.Me(db, lg))

			// read surface, any authenticated profile
			protected.Get("/departments", handlers.ListDepartments(db, lg))
			protected.Get("/departments/{id}", handlers.GetDepartment(db, lg))
			protected.Get("/services", handlers.ListServices(db, lg))
			protected.Get("/services/{id}", handlers.GetService(db, lg))
			protected.Get("/branches", handlers.ListBranches(db, lg))
			protected.Get("/branches/{id}", handlers.GetBranch(db, lg))
			protected.Get("/subdivisions", handlers.ListSubdivisions(db, lg))
			protected.Get("/subdivisions/{id}", handlers.GetSubdivision(db, lg))

			protected.Get("/reports/collections/data", handlers.Collections(db, lg))
			protected.Get("/reports/{id}", handlers.ListReports(db, lg))
			protected.Put("/reports/{id}", handlers.UpdateReportCount(db, lg))
			protected.Put("/reports/status/{id}", handlers.SetReportStatus(db, lg))

			protected.Get("/sheets/services", handlers.ServiceSheet(db, lg))
			protected.Get("/sheets/branches", handlers.BranchSheets(db, lg))
			protected.Get("/sheets/branches/{id}", handlers.BranchSheetByID(db, lg))
			protected.Get("/sheets/subdivisions", handlers.SubdivisionSheets(db, lg))
			protected.Get("/sheets/subdivisions/{id}", handlers.SubdivisionSheetByID(db, lg))
			protected.Get("/sheets/departments", handlers.DepartmentSheets(db, lg))
			protected.Get("/sheets/departments/{id}", handlers.DepartmentSheetByID(db, lg))

			protected.Get("/statistics/dashboard", handlers.DashboardStatistics(db, lg))

			protected.Get("/notices", handlers.ListMyNotices(db, lg))
			protected.Delete("/notices/{id}", handlers.DeleteNotice(db, lg))

			// reference data and report lifecycle, moderators and up
			protected.Group(func(mod chi.Router) {
				mod.Use(auth.RequireRole(models.RoleModerator, models.RoleAdministrator))

				mod.Post("/departments", handlers.CreateDepartment(db, lg))
				mod.Put("/departments/{id}", handlers.UpdateDepartment(db, lg))
				mod.Delete("/departments/{id}", handlers.DeleteDepartment(db, lg))
				mod.Post("/services", handlers.CreateService(db, lg))
				mod.Put("/services/{id}", handlers.UpdateService(db, lg))
				mod.Delete("/services/{id}", handlers.DeleteService(db, lg))
				mod.Post("/branches", handlers.CreateBranch(db, lg))
				mod.Put("/branches/{id}", handlers.UpdateBranch(db, lg))
				mod.Delete("/branches/{id}", handlers.DeleteBranch(db, lg))
				mod.Post("/subdivisions", handlers.CreateSubdivision(db, lg))
				mod.Put("/subdivisions/{id}", handlers.UpdateSubdivision(db, lg))
				mod.Delete("/subdivisions/{id}", handlers.DeleteSubdivision(db, lg))

				mod.Post("/reports/archive", handlers.ArchiveReports(db, lg))
				mod.Post("/reports/report", handlers.RolloverReports(db, lg))

				mod.Get("/archives", handlers.ListArchivedPeriods(db, lg))
				mod.Get("/archives/{id}", handlers.ListArchivesByDepartment(db, lg))
			})

			// administration only
			protected.Group(func(admin chi.Router) {
				admin.Use(auth.RequireRole(models.RoleAdministrator))

				admin.Post("/profiles", handlers.CreateProfile(db, lg))
				admin.Get("/profiles", handlers.ListProfiles(db, lg))
				admin.Get("/profiles/{id}", handlers.GetProfile(db, lg))
				admin.Put("/profiles/{id}", handlers.UpdateProfile(db, lg))
				admin.Delete("/profiles/{id}", handlers.DeleteProfile(db, lg))

				admin.Post("/reports/{id}", handlers.GenerateReports(db, lg))
				admin.Delete("/reports/{id}", handlers.DeleteReports(db, lg))
				admin.Delete("/archives/{id}", handlers.DeleteArchivesByDepartment(db, lg))
				admin.Post("/notices", handlers.CreateNotice(db, lg))

				admin.Get("/syslogs", handlers.ListSyslogs(db, lg))
				admin.Get("/syslogs/{id}", handlers.GetSyslog(db, lg))
				admin.Delete("/syslogs", handlers.DeleteAllSyslogs(db, lg))
				admin.Delete("/syslogs/{id}", handlers.DeleteSyslog(db, lg))

				admin.Get("/statistics/database", handlers.DatabaseStatistics(db, lg))
				admin.Get("/statistics/datacore", handlers.DatacoreStatistics(db, lg))
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
