package routes

import (
	"scorecardbackend/controllers"

	"github.com/gin-gonic/gin"
)

func Routes(r *gin.Engine) {

	v1 := r.Group("/api")

	{
		v1.GET("/keepServerRunning", controllers.HealthController.IsRunning)
		v1.GET("/scorecard", controllers.ScorecardController.GetScorecard)
		v1.GET("/scorecards", controllers.ScorecardController.GetScorecards)
		v1.POST("/batchScore", controllers.ScorecardController.BatchScore)
		v1.GET("/compare", controllers.ScorecardController.Compare)
		v1.POST("/analysis", controllers.ScorecardController.Analyze)
		v1.POST("/updateScores", controllers.ScorecardController.UpdateScores)
		v1.POST("/uploadXlsx", controllers.FileController.ParseXLSXFile)
		v1.GET("/filings", controllers.FilingController.GetFilings)
	}
}
