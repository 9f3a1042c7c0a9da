package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/geo"
	"konservasi-platform/internal/models"
	"konservasi-platform/internal/repository"
	"konservasi-platform/internal/testutil"
	"konservasi-platform/pkg/logging"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

type fixture struct {
	areaRepo       repository.AreaRepository
	assessmentRepo repository.AssessmentRepository

	areas       *AreaService
	assessments *AssessmentService
	stats       *StatisticsService
	ingestion   *IngestionService
	export      *ExportService
	maps        *MapService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	logger := logging.Nop()
	m := testutil.Metrics()

	areaRepo := repository.NewAreaRepository(db, logger, m)
	assessmentRepo := repository.NewAssessmentRepository(db, logger, m)
	recordRepo := repository.NewRecordRepository(db, logger, m)

	stats := NewStatisticsService(assessmentRepo, areaRepo, logger, m)
	stats.SetClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) })

	return &fixture{
		areaRepo:       areaRepo,
		assessmentRepo: assessmentRepo,
		areas:          NewAreaService(areaRepo, recordRepo, logger, m),
		assessments:    NewAssessmentService(assessmentRepo, areaRepo, logger, m),
		stats:          stats,
		ingestion:      NewIngestionService(assessmentRepo, areaRepo, logger, m),
		export:         NewExportService(assessmentRepo, areaRepo, logger, m),
		maps:           NewMapService(assessmentRepo, areaRepo, nil, "NOREGKK", logger, m),
	}
}

func (f *fixture) area(t *testing.T, name string) *models.Area {
	t.Helper()
	a, err := f.areas.Create(context.Background(), &models.AreaInput{Name: name, Category: models.SuakaMargasatwa})
	require.NoError(t, err)
	return a
}

func (f *fixture) assess(t *testing.T, areaID int64, year, score int) *models.Assessment {
	t.Helper()
	a, err := f.assessments.Create(context.Background(), &models.AssessmentInput{AreaID: areaID, Year: year, Score: score})
	require.NoError(t, err)
	return a
}

func isValidation(err error) bool {
	var ve *models.ValidationError
	var ves models.ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}

func TestAssessmentService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	area := f.area(t, "SM Baluran")

	a, err := f.assessments.Create(ctx, &models.AssessmentInput{AreaID: area.ID, Year: 2024, Score: 70, Note: strPtr(" baik ")})
	require.NoError(t, err)
	require.NotNil(t, a.AreaName)
	assert.Equal(t, "SM Baluran", *a.AreaName)
	assert.Equal(t, "baik", *a.Note)

	_, err = f.assessments.Create(ctx, &models.AssessmentInput{AreaID: area.ID, Year: 1990, Score: 70})
	assert.True(t, isValidation(err))

	_, err = f.assessments.Create(ctx, &models.AssessmentInput{AreaID: 999, Year: 2024, Score: 70})
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, MsgUnknownArea, ve.Message)
}

func TestAssessmentService_UpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	area := f.area(t, "SM Baluran")
	a := f.assess(t, area.ID, 2023, 40)

	_, err := f.assessments.Update(ctx, a.ID, &models.AssessmentPatch{Score: intPtr(150)})
	assert.True(t, isValidation(err))

	updated, err := f.assessments.Update(ctx, a.ID, &models.AssessmentPatch{Score: intPtr(90)})
	require.NoError(t, err)
	assert.Equal(t, 90, updated.Score)

	require.NoError(t, f.assessments.Delete(ctx, a.ID))
	_, err = f.assessments.Get(ctx, a.ID)
	var nf *repository.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestAreaService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.areas.Create(ctx, &models.AreaInput{Name: "", Category: models.CagarAlam})
	assert.True(t, isValidation(err))

	area := f.area(t, "TWA Grojogan Sewu")

	updated, err := f.areas.Update(ctx, area.ID, &models.AreaPatch{})
	require.NoError(t, err)
	assert.Equal(t, area.Name, updated.Name)

	err = f.areas.SetBoundary(ctx, area.ID, []byte(`{"type":"Point","coordinates":[1,2]}`))
	assert.True(t, isValidation(err))

	require.NoError(t, f.areas.SetBoundary(ctx, area.ID, []byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)))
	got, err := f.areas.Get(ctx, area.ID)
	require.NoError(t, err)
	require.True(t, got.HasBoundary())
	assert.Contains(t, *got.Boundary, "MultiPolygon")

	require.NoError(t, f.areas.SetBoundary(ctx, area.ID, nil))
	got, err = f.areas.Get(ctx, area.ID)
	require.NoError(t, err)
	assert.False(t, got.HasBoundary())

	require.NoError(t, f.areas.CreateBlock(ctx, &models.ManagementBlock{AreaID: area.ID, Name: "Blok Inti"}))
	assert.True(t, isValidation(f.areas.CreateBlock(ctx, &models.ManagementBlock{AreaID: area.ID})))
	blocks, err := f.areas.ListBlocks(ctx, area.ID)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)

	_, err = f.areas.ListBlocks(ctx, 999)
	var nf *repository.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestStatisticsService_Dashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	baluran := f.area(t, "SM Baluran")
	ijen := f.area(t, "CA Kawah Ijen")
	f.area(t, "TWA Belum Dinilai")

	f.assess(t, baluran.ID, 2023, 40)
	f.assess(t, baluran.ID, 2024, 80)
	f.assess(t, ijen.ID, 2024, 20)

	view, err := f.stats.Dashboard(ctx, nil)
	require.NoError(t, err)

	stats := view.Statistics
	assert.Equal(t, 3, stats.Summary.TotalAreas)
	assert.Equal(t, 3, stats.Summary.TotalAssessments)
	assert.Equal(t, 46.7, stats.Summary.AverageScore)
	assert.Equal(t, 2, stats.Summary.RecentAssessments)
	assert.Equal(t, 2024, stats.SelectedYear)
	assert.Equal(t, 1, stats.YearBreakdown[efektivitas.Effective])
	assert.Equal(t, 1, stats.YearBreakdown[efektivitas.Ineffective])
	assert.Equal(t, []int{2024, 2023}, stats.AvailableYears)

	require.Len(t, view.Pivot.Rows, 3)
	assert.Equal(t, "CA Kawah Ijen", view.Pivot.Rows[0].AreaName)
	assert.Equal(t, "SM Baluran", view.Pivot.Rows[1].AreaName)
	assert.Equal(t, 80, view.Pivot.Rows[1].LatestScore)
	assert.Equal(t, efektivitas.NotAssessed, view.Pivot.Rows[2].Category)

	require.NotNil(t, view.Trend)
	assert.Len(t, view.Trend.YearlyAverages, 2)
}

func TestStatisticsService_TrendEmpty(t *testing.T) {
	f := newFixture(t)
	report, err := f.stats.Trend(context.Background(), models.AssessmentFilter{})
	require.NoError(t, err)
	assert.Nil(t, report)

	stats, err := f.stats.Statistics(context.Background(), intPtr(2020))
	require.NoError(t, err)
	assert.Equal(t, 2020, stats.SelectedYear)
	assert.Equal(t, 0.0, stats.Summary.AverageScore)
}

const importCSV = "Nama Kawasan,Tahun,Nilai,Keterangan\n" +
	"SM Baluran,2024,75,baik\n" +
	"sm baluran,2024,60,ulang\n" +
	"Tidak Ada,2024,50,\n" +
	"SM Baluran,2023,abc,\n"

func TestIngestionService_PreviewDoesNotStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.area(t, "SM Baluran")

	result, err := f.ingestion.Preview(ctx, FormatCSV, []byte(importCSV))
	require.NoError(t, err)
	assert.Equal(t, efektivitas.ImportTally{Total: 4, Valid: 1, Invalid: 2, Duplicate: 1}, result.Tally)
	assert.Zero(t, result.Inserted)

	list, err := f.assessmentRepo.List(ctx, models.AssessmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIngestionService_ImportStoresValidOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.area(t, "SM Baluran")

	result, err := f.ingestion.Import(ctx, FormatCSV, []byte(importCSV))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	list, err := f.assessmentRepo.List(ctx, models.AssessmentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 75, list[0].Score)
	assert.Equal(t, "baik", *list[0].Note)
}

func TestIngestionService_XLSX(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.area(t, "CA Kawah Ijen")

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, r := range [][]string{
		{"kawasan", "year", "score"},
		{"CA Kawah Ijen", "2022", "55"},
		{"CA Kawah Ijen", "2023", "101"},
	} {
		row := sheet.AddRow()
		for _, c := range r {
			row.AddCell().SetString(c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))

	result, err := f.ingestion.Import(ctx, FormatXLSX, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Tally.Valid)
	assert.Equal(t, 1, result.Tally.Invalid)
	assert.Equal(t, efektivitas.MsgScoreRange, result.Records[1].Error)
	assert.Equal(t, 1, result.Inserted)
}

func TestIngestionService_BadFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.ingestion.Preview(ctx, FormatCSV, []byte("foo,bar\n1,2\n"))
	assert.True(t, isValidation(err))

	_, err = f.ingestion.Preview(ctx, FormatXLSX, []byte("not a zip"))
	assert.True(t, isValidation(err))

	_, err = DetectFormat("data.ods")
	assert.True(t, isValidation(err))

	format, err := DetectFormat("DATA.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)
}

func TestIngestionService_Template(t *testing.T) {
	f := newFixture(t)
	raw, err := f.ingestion.Decode(FormatCSV, f.ingestion.Template())
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}

func TestExportService_CSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	area := f.area(t, "SM Baluran")
	f.assess(t, area.ID, 2024, 75)
	f.assess(t, area.ID, 2023, 30)

	file, err := f.export.Export(ctx, ExportRequest{Format: FormatCSV, Scope: efektivitas.ScopeArea, AreaID: area.ID})
	require.NoError(t, err)
	assert.Equal(t, "efektivitas_pengelolaan_SM_Baluran.csv", file.Filename)
	assert.Equal(t, 2, file.Rows)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, efektivitas.ExportHeader(), records[0])
	assert.Equal(t, "2024", records[1][3])
	assert.Equal(t, "Suaka Margasatwa", records[1][2])
	assert.Equal(t, efektivitas.Effective.Label(), records[1][5])
}

func TestExportService_EmptyAndInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	file, err := f.export.Export(ctx, ExportRequest{Format: FormatCSV, Scope: efektivitas.ScopeYear, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "efektivitas_pengelolaan_2024.csv", file.Filename)
	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{efektivitas.ExportHeader()}, records)

	_, err = f.export.Export(ctx, ExportRequest{Format: "pdf", Scope: "everything"})
	var ves models.ValidationErrors
	require.True(t, errors.As(err, &ves))
	assert.Len(t, ves, 2)

	_, err = f.export.Export(ctx, ExportRequest{Format: FormatCSV, Scope: efektivitas.ScopeArea, AreaID: 42})
	assert.True(t, isValidation(err))
}

func TestExportService_XLSX(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	area := f.area(t, "SM Baluran")
	f.assess(t, area.ID, 2024, 75)

	file, err := f.export.Export(ctx, ExportRequest{Format: FormatXLSX, Scope: efektivitas.ScopeAll})
	require.NoError(t, err)
	assert.Equal(t, "efektivitas_pengelolaan.xlsx", file.Filename)
	assert.Equal(t, contentTypeXLSX, file.ContentType)

	rows, err := readFirstSheet(file.Data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, efektivitas.ExportHeader(), rows[0])
	assert.Equal(t, "SM Baluran", rows[1][1])
	assert.Equal(t, "75", rows[1][4])

	csvFile, err := f.export.Export(ctx, ExportRequest{Format: FormatCSV, Scope: efektivitas.ScopeAll})
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(csvFile.Data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, records, rows, "xlsx and csv exports carry the same cells")
}

func TestMapService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reg := "KSA.07"
	area, err := f.areas.Create(ctx, &models.AreaInput{Name: "CA Nusakambangan", Category: models.CagarAlam, RegistrationNo: &reg})
	require.NoError(t, err)
	f.assess(t, area.ID, 2024, 50)

	path := filepath.Join(t.TempDir(), "batas.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NOREGKK", 20)}))
	ring := [][]shp.Point{{{X: 108, Y: -7}, {X: 109, Y: -7}, {X: 109, Y: -8}, {X: 108, Y: -7}}}
	for _, key := range []string{"KSA.07", "KSA.99"} {
		p := shp.Polygon(*shp.NewPolyLine(ring))
		row := w.Write(&p)
		require.NoError(t, w.WriteAttribute(int(row), 0, key))
	}
	w.Close()

	result, err := f.maps.ImportShapefile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"KSA.07"}, result.Updated)
	assert.Equal(t, []string{"KSA.99"}, result.Unmatched)

	layer, err := f.maps.AreaLayer(ctx)
	require.NoError(t, err)
	require.Len(t, layer.Collection.Features, 1)
	props := layer.Collection.Features[0].Properties
	assert.Equal(t, "KSA.07", props["NOREGKK"])
	assert.Equal(t, string(efektivitas.PartiallyEffective), props["effectiveness_category"])
	assert.Equal(t, geo.DefaultStyle().FillFor(efektivitas.PartiallyEffective), props["fill"])
}
