package converter

import (
	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/domain/entity"
)

func ScrapeRunToResponse(run *entity.ScrapeRun) *dto.ScrapeRunResponse {
	if run == nil {
		return nil
	}
	return &dto.ScrapeRunResponse{
		ID:        run.ID,
		Trigger:   run.Trigger,
		Status:    string(run.Status),
		Message:   run.Message,
		Count:     run.Count,
		StartedAt: run.StartedAt,
		CreatedAt: run.CreatedAt,
	}
}

func ScrapeRunsToResponses(runs []entity.ScrapeRun) []dto.ScrapeRunResponse {
	responses := make([]dto.ScrapeRunResponse, len(runs))
	for i := range runs {
		responses[i] = *ScrapeRunToResponse(&runs[i])
	}
	return responses
}
