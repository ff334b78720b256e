package converter

import (
	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/domain/entity"
)

// DutyRecordsToResponses converts stored duty records to response DTOs
func DutyRecordsToResponses(records []entity.DutyRecord) []dto.DutyRecordResponse {
	responses := make([]dto.DutyRecordResponse, len(records))
	for i, record := range records {
		responses[i] = dto.DutyRecordResponse{
			ID:       record.ID,
			Date:     record.DateLabel,
			Name:     record.DoctorName,
			Timing:   record.TimeRangeText,
			Category: string(record.Category),
			Room:     record.Room,
		}
	}
	return responses
}

// AlertsToResponses converts matcher output to response DTOs
func AlertsToResponses(alerts []entity.UpcomingAlert) []dto.UpcomingAlertResponse {
	responses := make([]dto.UpcomingAlertResponse, len(alerts))
	for i, alert := range alerts {
		responses[i] = dto.UpcomingAlertResponse{
			Name:            alert.DoctorName,
			Category:        string(alert.Category),
			StartsInMinutes: alert.StartsInMinutes,
			TimeRange:       alert.TimeRangeText,
			StartsAt:        alert.StartsAt,
			EndsAt:          alert.EndsAt,
			Overnight:       alert.Overnight,
		}
	}
	return responses
}

// ScheduleQueryToFilter converts query parameters to a repository filter
func ScheduleQueryToFilter(query *dto.ScheduleQuery) *entity.ScheduleFilter {
	if query == nil {
		return nil
	}
	return &entity.ScheduleFilter{
		Date:       query.Date,
		DoctorName: query.DoctorName,
		Category:   entity.DutyCategory(query.Category),
	}
}
