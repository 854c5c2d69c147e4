package service


import (
	"context"
	"fmt"

	"classbook/config"
	"classbook/infras/otel"
	"classbook/internal/domains/schedule/model"
	"classbook/internal/domains/schedule/model/dto"
	"classbook/internal/domains/schedule/repository"
	"classbook/shared"
	"classbook/shared/cache"
	"classbook/shared/constant"
	gDto "classbook/shared/dto"
	"classbook/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetSchedule    = "schedule:get"
	cacheGetAllSchedule = "schedule:gets"
	cacheCountSchedule  = "schedule:count"
)

type Schedule interface {
	Get(ctx context.Context, id string) (dto.ScheduleResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSchedulesResponse, error)
	Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (int, error)
}

type serviceImpl struct {
	repo  repository.Schedule
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Schedule, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Schedule {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetSchedule, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	entry, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedule entry")

		return res, fmt.Errorf("failed to get schedule entry: %w", err)
	}

	if entry.ID == constant.Empty {
		return res, failure.NotFound("schedule entry not found")
	}

	res.FromModel(entry)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save schedule entry to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSchedulesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSchedule, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	total, err := s.Count(ctx, params, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedule entries")

		return res, fmt.Errorf("failed to get schedule entries: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save schedule entries to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSchedule, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count schedule entries")

		return res, fmt.Errorf("failed to count schedule entries: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save schedule count to cache")
		}
	}()

	return res, nil
}
