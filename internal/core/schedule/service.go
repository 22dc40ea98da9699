package schedule

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/timeclock-grpc/internal/core/access"
	"github.com/sirupsen/logrus"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service はスケジュール参照と衝突検出のユースケースをまとめます。
type Service struct {
	repo   Repository
	dir    access.Directory
	clock  Clock
	tx     TransactionManager
	logger logrus.FieldLogger
}

// UseCase はスケジュールユースケースの公開インターフェースです。
type UseCase interface {
	GetSchedule(ctx context.Context, in GetScheduleInput) (*DepartmentSchedule, error)
	DetectConflicts(ctx context.Context, in DetectConflictsInput) (*Result, error)
	CheckUserConflicts(ctx context.Context, in CheckUserConflictsInput) (*Result, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, dir access.Directory, clock Clock, tx TransactionManager, logger logrus.FieldLogger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Service{repo: repo, dir: dir, clock: clock, tx: tx, logger: logger}
}

// GetScheduleInput はスケジュール取得時の入力です。WeekStart がゼロ値なら現在までで最新の週を返します。
type GetScheduleInput struct {
	ActorID      string
	UserID       string
	DepartmentID string
	WeekStart    time.Time
}

// DetectConflictsInput は任意のスケジュール集合に対する衝突検出の入力です。
type DetectConflictsInput struct {
	Schedules []*DepartmentSchedule
}

// CheckUserConflictsInput はユーザーの所属部署をまたいだ衝突検出の入力です。
type CheckUserConflictsInput struct {
	ActorID   string
	UserID    string
	WeekStart time.Time
}

// GetSchedule は部署の週次スケジュールのうち、UserID のシフトを返します。
// 本人、グローバル ADMIN、または部署に所属するアクターのみ参照できます。
func (s *Service) GetSchedule(ctx context.Context, in GetScheduleInput) (*DepartmentSchedule, error) {
	userID, err := normalizeUUID(in.UserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	departmentID, err := normalizeUUID(in.DepartmentID, ErrInvalidDepartmentID)
	if err != nil {
		return nil, err
	}

	var found *DepartmentSchedule
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.authorizeView(txCtx, normalizeActorID(in.ActorID), userID, departmentID); err != nil {
			return err
		}

		var (
			result *DepartmentSchedule
			err    error
		)
		if in.WeekStart.IsZero() {
			result, err = s.repo.FindLatest(txCtx, departmentID, userID, s.clock.Now())
		} else {
			result, err = s.repo.FindByWeek(txCtx, departmentID, userID, NormalizeWeekStart(in.WeekStart))
		}
		if err != nil {
			return err
		}
		found = result
		return nil
	})
	if err != nil {
		if access.IsDenied(err) {
			s.logger.WithFields(logrus.Fields{
				"actor_id":      in.ActorID,
				"user_id":       userID,
				"department_id": departmentID,
			}).Warn("get schedule denied")
		}
		return nil, err
	}
	return found, nil
}

// DetectConflicts は渡されたスケジュールに対して衝突検出を行います。
func (s *Service) DetectConflicts(_ context.Context, in DetectConflictsInput) (*Result, error) {
	for _, sched := range in.Schedules {
		if sched == nil {
			continue
		}
		for _, shift := range sched.Shifts {
			if shift.DayOfWeek < 0 || shift.DayOfWeek > 6 {
				return nil, ErrInvalidDayOfWeek
			}
		}
	}

	result := DetectConflicts(in.Schedules)
	return &result, nil
}

// CheckUserConflicts はユーザーが所属する全部署の指定週のスケジュールを読み込み、部署間の衝突を検出します。
func (s *Service) CheckUserConflicts(ctx context.Context, in CheckUserConflictsInput) (*Result, error) {
	userID, err := normalizeUUID(in.UserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	if in.WeekStart.IsZero() {
		return nil, ErrInvalidWeekStart
	}
	weekStart := NormalizeWeekStart(in.WeekStart)

	var result Result
	err = s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		actorID := normalizeActorID(in.ActorID)
		subject, err := access.Resolve(txCtx, s.dir, actorID, "")
		if err != nil {
			return err
		}
		if actorID != userID && subject.GlobalRole != access.GlobalRoleAdmin {
			return access.ErrPermissionDenied
		}

		schedules, err := s.repo.ListForUserWeek(txCtx, userID, weekStart)
		if err != nil {
			return err
		}
		result = DetectConflicts(schedules)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.HasConflict {
		s.logger.WithFields(logrus.Fields{
			"user_id":    userID,
			"week_start": weekStart.Format(time.DateOnly),
			"conflicts":  len(result.Conflicts),
		}).Info("schedule conflicts detected")
	}

	return &result, nil
}

func (s *Service) authorizeView(ctx context.Context, actorID, userID, departmentID string) error {
	subject, err := access.Resolve(ctx, s.dir, actorID, departmentID)
	if err != nil {
		return err
	}
	if actorID == userID {
		return nil
	}
	return access.Authorize(subject, access.ActionViewSchedule)
}

// NormalizeWeekStart は週の開始日をその日付の UTC 0 時に揃えます。
func NormalizeWeekStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeUUID(raw string, invalid error) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", invalid
	}
	return parsed.String(), nil
}

func normalizeActorID(raw string) string {
	id, err := normalizeUUID(raw, access.ErrUnknownActor)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return id
}
