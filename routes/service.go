package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"covidsafe-services-server/database"
	"covidsafe-services-server/middleware"
	"covidsafe-services-server/models"
)

// RegisterServiceRoutes registers all service catalog routes
func RegisterServiceRoutes(public *gin.RouterGroup, protected *gin.RouterGroup) {
	// Public catalog reads
	public.GET("", listServices)
	public.GET("/:id", getService)

	// Mutations require an authenticated provider
	protected.POST("", createService)
	protected.PUT("/:id", updateService)
	protected.DELETE("/:id", deleteService)
}

// listServices returns services with optional type filtering and pagination
func listServices(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 100 {
		limit = 100
	}

	query := database.DB.Model(&models.Service{})
	if serviceType := c.Query("service_type"); serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}

	var services []models.Service
	if err := query.Offset(skip).Limit(limit).Find(&services).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch services",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// getService returns a specific service by ID
func getService(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid service ID",
			"message": "Service ID must be a number",
		})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, serviceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Service not found",
			"message": "No service exists with this ID",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"service": service})
}

// createService creates a new service (providers only)
func createService(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if !user.IsProvider() {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Providers only",
			"message": "Only providers can create services",
		})
		return
	}

	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	service := models.Service{
		ProviderID:   user.ID,
		ServiceType:  req.ServiceType,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		LocationArea: req.LocationArea,
		CovidSafe:    true,
		MaxDistance:  req.MaxDistance,
	}
	if req.CovidSafe != nil {
		service.CovidSafe = *req.CovidSafe
	}
	if service.MaxDistance == 0 {
		service.MaxDistance = 10
	}

	if err := database.DB.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Service creation failed",
			"message": "Failed to create service",
		})
		return
	}

	middleware.LogPrivacyAction(c, user.ID, models.ActionServiceCreated, "")

	c.JSON(http.StatusCreated, gin.H{"service": service})
}

// updateService updates a service owned by the caller
func updateService(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	serviceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid service ID",
			"message": "Service ID must be a number",
		})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, serviceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Service not found",
			"message": "No service exists with this ID",
		})
		return
	}

	if service.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Not authorized",
			"message": "Only the owning provider can update this service",
		})
		return
	}

	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	service.ServiceType = req.ServiceType
	service.Title = req.Title
	service.Description = req.Description
	service.Price = req.Price
	service.LocationArea = req.LocationArea
	if req.CovidSafe != nil {
		service.CovidSafe = *req.CovidSafe
	}
	if req.MaxDistance > 0 {
		service.MaxDistance = req.MaxDistance
	}

	if err := database.DB.Save(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Service update failed",
			"message": "Failed to update service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"service": service})
}

// deleteService deletes a service owned by the caller
func deleteService(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	serviceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid service ID",
			"message": "Service ID must be a number",
		})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, serviceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Service not found",
			"message": "No service exists with this ID",
		})
		return
	}

	if service.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Not authorized",
			"message": "Only the owning provider can delete this service",
		})
		return
	}

	if err := database.DB.Delete(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Service deletion failed",
			"message": "Failed to delete service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
