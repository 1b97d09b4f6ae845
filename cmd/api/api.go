package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"imagepipeline-api/pkg/app"
)

// api is the application object, initialized in main (or in TestMain).
var api app.Application

func main() {
	startTime := time.Now()
	// Identify operating environment (dev, test, staging, prod)
	env := os.Getenv("STAGE_NAME")
	if env == "" {
		env = "dev"
	}
	println("STAGE_NAME: " + env)

	// Initialize the application, including AWS clients and the pipeline service
	if err := api.Init(env); err != nil {
		log.Fatal("Failed to initialize application: " + err.Error())
	}

	// Setup Gin Routes
	g := gin.New()
	if env == "dev" {
		g.Use(gin.Logger())
	} else {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}
	g.Use(gin.Recovery())
	registerRoutes(g)

	// Identify operating environment (AWS or on localhost)
	_, ok := os.LookupEnv("LAMBDA_TASK_ROOT")
	if ok {
		// Run API as an AWS Lambda function with an API Gateway proxy
		ginLambda := ginadapter.NewV2(g)
		lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
			return ginLambda.ProxyWithContext(ctx, req)
		})
	} else {
		// Run API on localhost for local development, debugging, etc.
		log.Println("Initialized API in ", time.Since(startTime))
		log.Fatal(g.Run(":8080"))
	}
}

// registerRoutes initializes all API routes on the provided router.
func registerRoutes(r *gin.Engine) {
	r.Use(corsHeaders())
	r.GET("/", about)
	registerImageRoutes(r)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found: API endpoint"})
	})
}

// about handles a request for basic information about the API.
func about(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, api.About())
}

// corsHeaders permits browser clients on any origin to read responses.
func corsHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Next()
	}
}
