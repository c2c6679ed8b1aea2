package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"momcafe_saas_v1_202608/internal/model"
	"momcafe_saas_v1_202608/internal/repository"
)

// ==================== 服务实现 ====================

// ContentService 生成稿生命周期管理
// 状态只进不退: pending -> scheduled -> posted
type ContentService struct {
	ContentRepo repository.ContentRepository
	Storage     StorageService

	Now func() time.Time
}

func NewContentService(contentRepo repository.ContentRepository, storage StorageService) *ContentService {
	return &ContentService{ContentRepo: contentRepo, Storage: storage, Now: time.Now}
}

// ==================== 状态流转 ====================

// Schedule 把待确认稿件确认排期
func (s *ContentService) Schedule(ctx context.Context, id int64) (*model.GeneratedContent, error) {
	content, err := s.ContentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("게시글을 찾을 수 없습니다")
	}
	if !content.CanSchedule() {
		return nil, fmt.Errorf("%s 상태의 게시글은 예약할 수 없습니다", content.Status)
	}
	if err := s.ContentRepo.UpdateFields(ctx, id, map[string]interface{}{
		"status": model.ContentStatusScheduled,
	}); err != nil {
		return nil, fmt.Errorf("更新稿件状态失败: %v", err)
	}
	content.Status = model.ContentStatusScheduled
	return content, nil
}

// MarkPosted 标记已发布，发布时间取当前时刻
func (s *ContentService) MarkPosted(ctx context.Context, id int64) (*model.GeneratedContent, error) {
	content, err := s.ContentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("게시글을 찾을 수 없습니다")
	}
	if !content.CanMarkPosted() {
		return nil, fmt.Errorf("%s 상태의 게시글은 게시 완료 처리할 수 없습니다", content.Status)
	}
	now := s.Now()
	if err := s.ContentRepo.UpdateFields(ctx, id, map[string]interface{}{
		"status":    model.ContentStatusPosted,
		"posted_at": &now,
	}); err != nil {
		return nil, fmt.Errorf("更新稿件状态失败: %v", err)
	}
	content.Status = model.ContentStatusPosted
	content.PostedAt = &now
	return content, nil
}

// Delete 删除稿件，已发布的稿件不允许删除
func (s *ContentService) Delete(ctx context.Context, id int64) error {
	content, err := s.ContentRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("게시글을 찾을 수 없습니다")
	}
	if !content.CanDelete() {
		return fmt.Errorf("이미 게시된 글은 삭제할 수 없습니다")
	}
	return s.ContentRepo.Delete(ctx, id)
}

// Duplicate 复制稿件为新的待确认稿，任何状态都可复制
func (s *ContentService) Duplicate(ctx context.Context, id int64) (*model.GeneratedContent, error) {
	src, err := s.ContentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("게시글을 찾을 수 없습니다")
	}

	dup := &model.GeneratedContent{
		OrderItemID:    src.OrderItemID,
		Title:          src.Title,
		Body:           src.Body,
		Tags:           src.Tags,
		ScheduledDate:  src.ScheduledDate,
		ScheduledTime:  src.ScheduledTime,
		Status:         model.ContentStatusPending,
		ReviewRequired: src.ReviewRequired,
	}
	if err := s.ContentRepo.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("复制稿件失败: %v", err)
	}
	return dup, nil
}

// ==================== 编辑与查询 ====================

// UpdateDraft 修改稿件内容或排期，已发布的稿件不可修改
func (s *ContentService) UpdateDraft(ctx context.Context, id int64, title, body string, tags []string, date, slot string) (*model.GeneratedContent, error) {
	content, err := s.ContentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("게시글을 찾을 수 없습니다")
	}
	if content.Status == model.ContentStatusPosted {
		return nil, fmt.Errorf("이미 게시된 글은 수정할 수 없습니다")
	}

	fields := map[string]interface{}{}
	if title != "" {
		fields["title"] = title
	}
	if body != "" {
		fields["body"] = body
	}
	if tags != nil {
		fields["tags"] = pq.StringArray(tags)
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("날짜 형식이 올바르지 않습니다 (YYYY-MM-DD)")
		}
		fields["scheduled_date"] = date
	}
	if slot != "" {
		if _, err := time.Parse("15:04", slot); err != nil {
			return nil, fmt.Errorf("시간 형식이 올바르지 않습니다 (HH:MM)")
		}
		fields["scheduled_time"] = slot
	}
	if len(fields) == 0 {
		return content, nil
	}
	if err := s.ContentRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("更新稿件失败: %v", err)
	}
	return s.ContentRepo.GetByID(ctx, id)
}

// List 分页查询稿件
func (s *ContentService) List(ctx context.Context, filter repository.ContentFilter) ([]model.GeneratedContent, int64, error) {
	return s.ContentRepo.List(ctx, filter)
}

// GetByID 查询单个稿件
func (s *ContentService) GetByID(ctx context.Context, id int64) (*model.GeneratedContent, error) {
	content, err := s.ContentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("게시글을 찾을 수 없습니다")
	}
	return content, nil
}

// BoardStats 运营看板的稿件统计
type BoardStats struct {
	Pending        int64 `json:"pending"`
	Scheduled      int64 `json:"scheduled"`
	Posted         int64 `json:"posted"`
	DueToday       int64 `json:"due_today"`
	ReviewRequired int64 `json:"review_required"`
}

// GetBoardStats 汇总各状态稿件数
func (s *ContentService) GetBoardStats(ctx context.Context) (*BoardStats, error) {
	stats := &BoardStats{}
	for status, target := range map[string]*int64{
		model.ContentStatusPending:   &stats.Pending,
		model.ContentStatusScheduled: &stats.Scheduled,
		model.ContentStatusPosted:    &stats.Posted,
	} {
		count, err := s.ContentRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("统计稿件失败: %v", err)
		}
		*target = count
	}
	dueToday, err := s.ContentRepo.CountDueOn(ctx, s.Now().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("统计今日稿件失败: %v", err)
	}
	review, err := s.ContentRepo.CountReviewRequired(ctx)
	if err != nil {
		return nil, fmt.Errorf("统计待复核稿件失败: %v", err)
	}
	stats.DueToday = dueToday
	stats.ReviewRequired = review
	return stats, nil
}

// ==================== CSV 导出 ====================

// ExportCSV 导出稿件列表为 CSV 并上传到对象存储，返回下载地址
func (s *ContentService) ExportCSV(ctx context.Context, filter repository.ContentFilter) (string, error) {
	filter.Page = 0
	filter.PageSize = 0

	contents, _, err := s.ContentRepo.List(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("查询导出数据失败: %v", err)
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write([]string{"id", "order_item_id", "title", "status", "scheduled_date", "scheduled_time", "tags", "review_required"})
	for _, c := range contents {
		_ = w.Write([]string{
			strconv.FormatInt(c.ID, 10),
			strconv.FormatInt(c.OrderItemID, 10),
			c.Title,
			c.Status,
			c.ScheduledDate,
			c.ScheduledTime,
			strings.Join(c.Tags, "|"),
			strconv.FormatBool(c.ReviewRequired),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("生成 CSV 失败: %v", err)
	}

	key := ExportKey("contents", s.Now())
	url, err := s.Storage.Upload(ctx, key, []byte(sb.String()), "text/csv")
	if err != nil {
		return "", err
	}
	log.Printf("[ContentService] 已导出 %d 条稿件 -> %s", len(contents), key)
	return url, nil
}
