package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ludo-technologies/crev/domain"
)

// ReviewUseCase orchestrates the review workflow: run the engine, then
// write the result in the requested format.
type ReviewUseCase struct {
	service    domain.ReviewService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewReviewUseCase creates a new review use case
func NewReviewUseCase(service domain.ReviewService, formatter domain.OutputFormatter) *ReviewUseCase {
	return &ReviewUseCase{
		service:    service,
		formatter:  formatter,
		fileHelper: NewFileHelper(),
	}
}

// Execute performs the complete review workflow
func (uc *ReviewUseCase) Execute(ctx context.Context, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	if err := uc.validateRequest(&req); err != nil {
		return nil, err
	}

	result, err := uc.service.Review(ctx, req)
	if err != nil {
		return nil, err
	}

	writer := req.OutputWriter
	if writer == nil {
		writer = os.Stdout
	}

	if err := uc.formatter.Write(result, req.OutputFormat, writer); err != nil {
		return result, err
	}

	return result, nil
}

// validateRequest checks the request and fills auto-detectable fields
func (uc *ReviewUseCase) validateRequest(req *domain.ReviewRequest) error {
	if req.TargetPath == "" {
		return domain.NewDomainError(domain.ErrValidation, "no target path specified", nil)
	}

	if req.AnalysisType == "" {
		info, err := os.Stat(req.TargetPath)
		if err != nil {
			return domain.NewTargetNotFoundError(req.TargetPath, err)
		}
		if info.IsDir() {
			req.AnalysisType = domain.AnalysisTypeDirectory
		} else {
			req.AnalysisType = domain.AnalysisTypeFile
		}
	}

	if req.AnalysisType == domain.AnalysisTypeFile && !uc.fileHelper.IsSupportedFile(req.TargetPath) && len(req.IncludeExtensions) == 0 {
		return domain.NewDomainError(domain.ErrValidation,
			fmt.Sprintf("unsupported file type: %s", req.TargetPath), nil)
	}

	return nil
}

// ReviewUseCaseBuilder provides a builder pattern for creating ReviewUseCase
type ReviewUseCaseBuilder struct {
	service    domain.ReviewService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewReviewUseCaseBuilder creates a new builder
func NewReviewUseCaseBuilder() *ReviewUseCaseBuilder {
	return &ReviewUseCaseBuilder{}
}

// WithService sets the review service
func (b *ReviewUseCaseBuilder) WithService(service domain.ReviewService) *ReviewUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *ReviewUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *ReviewUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithFileHelper sets the file helper
func (b *ReviewUseCaseBuilder) WithFileHelper(fileHelper *FileHelper) *ReviewUseCaseBuilder {
	b.fileHelper = fileHelper
	return b
}

// Build creates the ReviewUseCase with the configured dependencies
func (b *ReviewUseCaseBuilder) Build() (*ReviewUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("review service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := &ReviewUseCase{
		service:    b.service,
		formatter:  b.formatter,
		fileHelper: b.fileHelper,
	}

	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}

	return uc, nil
}
