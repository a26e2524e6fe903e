package model

// Column names of the PMFS Amazônia Legal dataset that the pipeline refers to
const (
	ColNroRegistro    = "NRO_REGISTRO"
	ColNroAutorizacao = "NRO_AUTORIZACAO"
	ColDataEmissao    = "DATA_DE_EMISSAO"
	ColDataValidade   = "DATA_DE_VALIDADE"
	ColMunicipio      = "MUNICIPIO"
	ColUF             = "UF"
	ColNomeDetentor   = "NOME_DETENTOR"
	ColCPFCNPJ        = "CPF_CNPJ_DETENTOR"
	ColImovelRural    = "IMOVEL_RURAL_VINCULADO"
	ColNroCAR         = "NRO_CAR_IMOVEL_RURAL"
	ColEmpreendNome   = "NOME_EMPREENDIMENTO_VINC"
	ColLatitude       = "LATITUDE_EMPREENDIMENTO"
	ColLongitude      = "LONGITUDE_EMPREENDIMENTO"
	ColNomeRT         = "NOME_DO_RT"
	ColNroART         = "NRO_ART"
	ColAtividadeRT    = "ATIVIDADE_RT"
	ColAtividade      = "ATIVIDADE"
	ColTipoEmpreend   = "TIPO_DE_EMPREENDIMENTO"
	ColNatJuridica    = "NATUREZA_JURIDICA"
	ColCompetencia    = "COMPETENCIA_AVALIACAO"
	ColOrgaoAnalise   = "ORGAO_AMBIENTAL_RESP_ANALISE"
	ColClima          = "CLIMA"
	ColSolo           = "SOLO"
	ColBioma          = "BIOMA"
	ColFitofisionom   = "FITOFISIONOMIA"
	ColMetodoExtr     = "METODO_EXTRACAO"
	ColSistemaSilvi   = "SISTEMA_SILVICULTURAL"
	ColCicloCorte     = "CICLO_CORTE"
	ColAreaTotal      = "AREA_TOTAL_PROPRIEDADE"
	ColAreaManejo     = "AREA_MANEJO_FLORESTAL"
	ColAreaEfetivo    = "AREA_EFETIVO_MANEJO"
	ColCapacidade     = "CAPACIDADE_PRODUTIVA"
	ColEstimativa     = "ESTIMATIVA_PRODUTIVA_ANUAL"
	ColIntensidade    = "INTENSIDADE_CORTE"
	ColEquacaoVolume  = "EQUACAO_VOLUME"
	ColAreaAutoriz    = "AREA_AUTORIZADA"
	ColSituacao       = "SITUACAO"
	ColDataSituacao   = "DATA_DA_SITUACAO"
	ColUltimoTramite  = "ULTIMO_TRAMITE"
	ColDataTramite    = "DATA_DO_TRAMITE"
	ColUltimaAtualiz  = "ULTIMA_ATUALIZACAO_RELATORIO"
	ColModalidade     = "MODALIDADE_PMFS"
)

var (
	// CategoricalColumns are summarized by the profiler's category distribution
	CategoricalColumns = []string{
		ColMunicipio,
		ColOrgaoAnalise,
		ColAtividade,
		ColTipoEmpreend,
		ColSituacao,
	}

	// AuthorizationKey identifies an authorization across states and municipalities
	AuthorizationKey = []string{ColNroAutorizacao, ColUF, ColMunicipio}

	// SentinelValues are literals conventionally used to mean "no value"
	SentinelValues = []string{"NA", "N/A", "NULL", "NULO", "NONE", " ", ""}
)
