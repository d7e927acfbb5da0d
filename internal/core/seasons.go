package core

import "context"

// StartSeason opens a new season record for the given calendar year.
func (s *Service) StartSeason(ctx context.Context, year int) (SeasonRecord, Result, error) {
	var created SeasonRecord
	res, err := s.run(ctx, "start_season", func(tx Transaction) error {
		var err error
		created, err = tx.CreateSeasonRecord(SeasonRecord{
			Year:      year,
			StartedAt: s.now(),
		})
		return err
	})
	return created, res, err
}

// CloseSeason stamps the end of a season and tallies what the garden
// produced during it.
func (s *Service) CloseSeason(ctx context.Context, id string, notes *string) (SeasonRecord, Result, error) {
	var closed SeasonRecord
	res, err := s.run(ctx, "close_season", func(tx Transaction) error {
		snapshot := tx.Snapshot()
		var err error
		closed, err = tx.UpdateSeasonRecord(id, func(rec *SeasonRecord) error {
			ended := s.now()
			rec.EndedAt = &ended
			rec.Notes = notes
			rec.PlantsSown = 0
			rec.PlantsDied = 0
			for _, plant := range snapshot.ListPlants() {
				if plant.SownAt.Year() != rec.Year {
					continue
				}
				rec.PlantsSown++
				if !plant.Alive {
					rec.PlantsDied++
				}
			}
			rec.CrossCount = 0
			rec.SeedsHarvested = 0
			for _, cross := range snapshot.ListCrossRecords() {
				if cross.Year != rec.Year {
					continue
				}
				rec.CrossCount++
				rec.SeedsHarvested += cross.SeedCount
			}
			return nil
		})
		return err
	})
	return closed, res, err
}

// AttachArchive records the blob key of an exported season snapshot on
// its season record.
func (s *Service) AttachArchive(ctx context.Context, id, key string) (SeasonRecord, Result, error) {
	var updated SeasonRecord
	res, err := s.run(ctx, "attach_archive", func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateSeasonRecord(id, func(rec *SeasonRecord) error {
			rec.ArchiveKey = &key
			return nil
		})
		return err
	})
	return updated, res, err
}
