package loader

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/converter"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

const stageName = "load"

// field maps one cleaned column onto a document field
type field struct {
	column string
	set    func(p *model.Project, v interface{})
}

// documentFields lists every scalar document field and its source column
var documentFields = []field{
	{model.ColNroRegistro, func(p *model.Project, v interface{}) { p.NroRegistro = v }},
	{model.ColNroAutorizacao, func(p *model.Project, v interface{}) { p.NroAutorizacao = v }},
	{model.ColDataEmissao, func(p *model.Project, v interface{}) { p.DataEmissao = v }},
	{model.ColDataValidade, func(p *model.Project, v interface{}) { p.DataValidade = v }},
	{model.ColMunicipio, func(p *model.Project, v interface{}) { p.Municipio = v }},
	{model.ColUF, func(p *model.Project, v interface{}) { p.UF = v }},

	{model.ColNomeDetentor, func(p *model.Project, v interface{}) { p.Detentor.Nome = v }},
	{model.ColCPFCNPJ, func(p *model.Project, v interface{}) { p.Detentor.CPFCNPJ = v }},

	{model.ColImovelRural, func(p *model.Project, v interface{}) { p.Imovel.Nome = v }},
	{model.ColNroCAR, func(p *model.Project, v interface{}) { p.Imovel.CAR = v }},
	{model.ColEmpreendNome, func(p *model.Project, v interface{}) { p.Imovel.NomeEmpreendimento = v }},
	{model.ColLatitude, func(p *model.Project, v interface{}) { p.Imovel.Latitude = v }},
	{model.ColLongitude, func(p *model.Project, v interface{}) { p.Imovel.Longitude = v }},

	{model.ColNomeRT, func(p *model.Project, v interface{}) { p.ResponsavelTecnico.Nome = v }},
	{model.ColNroART, func(p *model.Project, v interface{}) { p.ResponsavelTecnico.NroART = v }},
	{model.ColAtividadeRT, func(p *model.Project, v interface{}) { p.ResponsavelTecnico.AtividadeRT = v }},
	{model.ColAtividade, func(p *model.Project, v interface{}) { p.ResponsavelTecnico.Atividade = v }},

	{model.ColTipoEmpreend, func(p *model.Project, v interface{}) { p.EmpreendimentoTipo.Tipo = v }},
	{model.ColNatJuridica, func(p *model.Project, v interface{}) { p.EmpreendimentoTipo.NaturezaJuridica = v }},
	{model.ColCompetencia, func(p *model.Project, v interface{}) { p.EmpreendimentoTipo.CompetenciaAvaliacao = v }},
	{model.ColOrgaoAnalise, func(p *model.Project, v interface{}) { p.EmpreendimentoTipo.OrgaoAmbiental = v }},

	{model.ColClima, func(p *model.Project, v interface{}) { p.CaracteristicasAmbientais.Clima = v }},
	{model.ColSolo, func(p *model.Project, v interface{}) { p.CaracteristicasAmbientais.Solo = v }},
	{model.ColBioma, func(p *model.Project, v interface{}) { p.CaracteristicasAmbientais.Bioma = v }},
	{model.ColFitofisionom, func(p *model.Project, v interface{}) { p.CaracteristicasAmbientais.Fitofisionomia = v }},

	{model.ColMetodoExtr, func(p *model.Project, v interface{}) { p.Manejo.MetodoExtracao = v }},
	{model.ColSistemaSilvi, func(p *model.Project, v interface{}) { p.Manejo.SistemaSilvicultural = v }},
	{model.ColCicloCorte, func(p *model.Project, v interface{}) { p.Manejo.CicloCorte = v }},
	{model.ColAreaTotal, func(p *model.Project, v interface{}) { p.Manejo.AreaTotalPropriedade = v }},
	{model.ColAreaManejo, func(p *model.Project, v interface{}) { p.Manejo.AreaManejoFlorestal = v }},
	{model.ColAreaEfetivo, func(p *model.Project, v interface{}) { p.Manejo.AreaEfetivoManejo = v }},
	{model.ColCapacidade, func(p *model.Project, v interface{}) { p.Manejo.CapacidadeProdutiva = v }},
	{model.ColEstimativa, func(p *model.Project, v interface{}) { p.Manejo.EstimativaProdutivaAnual = v }},
	{model.ColIntensidade, func(p *model.Project, v interface{}) { p.Manejo.IntensidadeCorte = v }},
	{model.ColEquacaoVolume, func(p *model.Project, v interface{}) { p.Manejo.EquacaoVolume = v }},
	{model.ColAreaAutoriz, func(p *model.Project, v interface{}) { p.Manejo.AreaAutorizada = v }},

	{model.ColSituacao, func(p *model.Project, v interface{}) { p.Situacao.Status = v }},
	{model.ColDataSituacao, func(p *model.Project, v interface{}) { p.Situacao.DataSituacao = v }},
	{model.ColUltimoTramite, func(p *model.Project, v interface{}) { p.Situacao.UltimoTramite = v }},
	{model.ColDataTramite, func(p *model.Project, v interface{}) { p.Situacao.DataTramite = v }},
	{model.ColUltimaAtualiz, func(p *model.Project, v interface{}) { p.Situacao.UltimaAtualizacaoRelatorio = v }},
}

// Divergence is a scalar column whose value differs between rows of one group
type Divergence struct {
	Key    string
	Column string
}

// group is the set of rows sharing a registration number, in file order
type group struct {
	key  string
	rows []int
}

// Build is the result of grouping a cleaned table into project documents
type Build struct {
	Projects    []*model.Project
	Divergences []Divergence
	BlankKeys   int // Rows skipped for a null or blank registration number
}

// BuildProjects groups t by registration number and builds one document per group,
// in order of first appearance. Scalar fields come from the first row of each group.
// Rows without a registration number belong to no group and are skipped.
// Under the strict policy a divergent scalar field fails the build.
func BuildProjects(t *model.Table, conv *converter.TypeConverter, policy string, logger *zap.Logger) (*Build, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	keyIdx, ok := t.ColumnIndex(model.ColNroRegistro)
	if !ok {
		return nil, model.MissingColumn(stageName, model.ColNroRegistro)
	}

	groups, blank := groupRows(t, keyIdx)
	for _, r := range blank {
		logger.Warn("Skipping row without registration number", zap.Int("row", r+1))
	}

	// Resolve each document field once; absent columns stay nil
	indexes := make([]int, len(documentFields))
	for i, f := range documentFields {
		idx, ok := t.ColumnIndex(f.column)
		if !ok {
			idx = -1
			logger.Debug("Document field has no source column", zap.String("column", f.column))
		}
		indexes[i] = idx
	}
	modalidadeIdx, hasModalidade := t.ColumnIndex(model.ColModalidade)

	build := &Build{Projects: make([]*model.Project, 0, len(groups)), BlankKeys: len(blank)}
	for _, g := range groups {
		first := t.Rows[g.rows[0]]
		project := &model.Project{Key: g.key, ModalidadesPMFS: []string{}}

		for i, f := range documentFields {
			idx := indexes[i]
			if idx < 0 {
				continue
			}
			f.set(project, conv.DocumentValue(first[idx], t.Columns[idx].Kind))

			for _, r := range g.rows[1:] {
				if !sameCell(first[idx], t.Rows[r][idx]) {
					build.Divergences = append(build.Divergences, Divergence{Key: g.key, Column: t.Columns[idx].Name})
					break
				}
			}
		}

		if hasModalidade {
			project.ModalidadesPMFS = distinctValues(t, g.rows, modalidadeIdx)
		}
		build.Projects = append(build.Projects, project)
	}

	for _, d := range build.Divergences {
		if policy == config.GroupPolicyStrict {
			return build, model.NewPipelineError(model.KindDivergentGroup, nil).
				WithStage(stageName).
				WithColumn(d.Column).
				WithKey(d.Key)
		}
		logger.Warn("Divergent values within group, keeping first row",
			zap.String("key", d.Key),
			zap.String("column", d.Column))
	}

	return build, nil
}

// groupRows partitions row indexes by trimmed key text, keeping first-appearance order.
// Rows whose key is null or blank are returned separately.
func groupRows(t *model.Table, keyIdx int) ([]*group, []int) {
	var groups []*group
	var blank []int
	byKey := make(map[string]*group)
	for r, row := range t.Rows {
		key := converter.KeyValue(row[keyIdx])
		if key == "" {
			blank = append(blank, r)
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, r)
	}
	return groups, blank
}

// distinctValues returns the non-null values of column idx over rows, first appearance first
func distinctValues(t *model.Table, rows []int, idx int) []string {
	seen := make(map[string]bool)
	values := []string{}
	for _, r := range rows {
		cell := t.Rows[r][idx]
		if !cell.Valid || seen[cell.String] {
			continue
		}
		seen[cell.String] = true
		values = append(values, cell.String)
	}
	return values
}

func sameCell(a, b sql.NullString) bool {
	return a.Valid == b.Valid && a.String == b.String
}

// String returns a string representation of the divergence
func (d Divergence) String() string {
	return fmt.Sprintf("%s[%s]", d.Key, d.Column)
}
