package classifier

import (
	"context"
	"fmt"

	videointelligence "cloud.google.com/go/videointelligence/apiv1"
	"cloud.google.com/go/videointelligence/apiv1/videointelligencepb"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Annotator 提交视频并等待显式内容检测结果
type Annotator interface {
	Annotate(ctx context.Context, content []byte) (*videointelligencepb.AnnotateVideoResponse, error)
	Close() error
}

// Classifier 基于帧级色情可能性判断视频是否违规
type Classifier struct {
	annotator Annotator
	logger    *zap.Logger
}

// New 用给定的 annotator 创建分类器
func New(annotator Annotator, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{annotator: annotator, logger: logger}
}

// NewGoogle 连接 Video Intelligence；credentialsFile 为空时使用默认凭据
func NewGoogle(ctx context.Context, credentialsFile string, logger *zap.Logger) (*Classifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := videointelligence.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create video intelligence client: %w", err)
	}
	return New(&googleAnnotator{client: client}, logger), nil
}

// IsExplicit 任意一帧为 LIKELY 或 VERY_LIKELY 即判定违规
func (c *Classifier) IsExplicit(ctx context.Context, content []byte) (bool, error) {
	resp, err := c.annotator.Annotate(ctx, content)
	if err != nil {
		return false, err
	}

	for _, result := range resp.GetAnnotationResults() {
		if result.GetError() != nil {
			return false, fmt.Errorf("annotation failed: %s", result.GetError().GetMessage())
		}
		for _, frame := range result.GetExplicitAnnotation().GetFrames() {
			if isLikely(frame.GetPornographyLikelihood()) {
				c.logger.Debug("explicit frame detected",
					zap.Duration("offset", frame.GetTimeOffset().AsDuration()),
					zap.String("likelihood", frame.GetPornographyLikelihood().String()))
				return true, nil
			}
		}
	}
	return false, nil
}

// Close 释放底层连接
func (c *Classifier) Close() error {
	return c.annotator.Close()
}

func isLikely(l videointelligencepb.Likelihood) bool {
	return l == videointelligencepb.Likelihood_LIKELY || l == videointelligencepb.Likelihood_VERY_LIKELY
}

type googleAnnotator struct {
	client *videointelligence.Client
}

func (g *googleAnnotator) Annotate(ctx context.Context, content []byte) (*videointelligencepb.AnnotateVideoResponse, error) {
	op, err := g.client.AnnotateVideo(ctx, &videointelligencepb.AnnotateVideoRequest{
		InputContent: content,
		Features:     []videointelligencepb.Feature{videointelligencepb.Feature_EXPLICIT_CONTENT_DETECTION},
	})
	if err != nil {
		return nil, fmt.Errorf("annotate video: %w", err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("wait for annotation: %w", err)
	}
	return resp, nil
}

func (g *googleAnnotator) Close() error {
	return g.client.Close()
}

// StaticApprover 分类器关闭时使用，所有视频均视为正常
type StaticApprover struct{}

func (StaticApprover) IsExplicit(context.Context, []byte) (bool, error) {
	return false, nil
}
