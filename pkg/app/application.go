package app

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"imagepipeline-api/pkg/pipeline"
)

// About provides basic information about the API.
type About struct {
	Name        string    `json:"name"`
	GitHash     string    `json:"gitHash,omitempty"`
	BuildTime   time.Time `json:"buildTime"`
	Language    string    `json:"language"`
	Environment string    `json:"environment"`
	Description string    `json:"description,omitempty"`
}

// String supports the Stringer interface.
func (a About) String() string {
	return fmt.Sprintf("Name: %s\nGitHash: %s\nBuildTime: %s\nLanguage: %s\nEnvironment: %s\nDescription: %s",
		a.Name, a.GitHash, a.BuildTime, a.Language, a.Environment, a.Description)
}

// Application is the main application object, which contains configuration
// settings, AWS clients, and the initialized pipeline service.
type Application struct {
	Name        string           // Name of the application
	GitHash     string           // Git hash of the application
	BuildTime   time.Time        // Executable build time
	Language    string           // Go Compiler version (e.g. "go1.x")
	Environment string           // Environment name (e.g. "dev", "test", "staging", "prod")
	Description string           // Description of the application
	AWSConfig   aws.Config       // AWS Configuration
	S3Client    *s3.Client       // S3 client
	DBClient    *dynamodb.Client // DynamoDB client
	RekClient   *rekognition.Client
	Config      pipeline.Config  // Pipeline configuration
	Pipeline    pipeline.Service // Pipeline stages and status read path
}

// About returns basic information about the initialized Application.
func (a *Application) About() About {
	return About{
		Name:        a.Name,
		GitHash:     a.GitHash,
		BuildTime:   a.BuildTime,
		Language:    a.Language,
		Environment: a.Environment,
		Description: a.Description,
	}
}

// setDefaults sets default configuration settings for the application.
func (a *Application) setDefaults() {
	if a.Name == "" {
		a.Name = "Image Pipeline API"
	}
	if a.BuildTime.IsZero() {
		p, err := os.Executable()
		if err == nil {
			s, err := os.Stat(p)
			if err == nil {
				a.BuildTime = s.ModTime()
			}
		}
	}
	if a.Language == "" {
		a.Language = runtime.Version() + " (" + runtime.GOOS + " " + runtime.GOARCH + ")"
	}
	if a.Environment == "" {
		a.Environment = "dev"
	}
}

// Init initializes the application, including AWS clients and the pipeline
// service. The supplied environment name overrides the configured one when
// not empty.
func (a *Application) Init(env string) error {
	if env != "" {
		if err := os.Setenv("STAGE_NAME", env); err != nil {
			return fmt.Errorf("error setting environment name: %w", err)
		}
	}
	cfg, err := pipeline.LoadConfig()
	if err != nil {
		return err
	}
	a.Environment = cfg.Environment
	a.setDefaults()
	a.Config = cfg

	ctx := context.Background()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("error loading AWS config: %w", err)
	}
	a.AWSConfig = awsCfg
	a.S3Client = s3.NewFromConfig(awsCfg)
	a.DBClient = dynamodb.NewFromConfig(awsCfg)
	if cfg.UseRekognition {
		a.RekClient = rekognition.NewFromConfig(awsCfg)
	}
	a.Pipeline = pipeline.NewService(cfg, a.S3Client, a.DBClient, a.RekClient)
	return nil
}

// InitMock initializes the application for testing, with in-memory storage
// in place of AWS clients.
func (a *Application) InitMock(env string) error {
	a.Environment = env
	a.setDefaults()
	cfg := pipeline.Config{Environment: a.Environment}
	a.Pipeline = pipeline.NewMockService(cfg)
	a.Config = a.Pipeline.Config
	return nil
}
