package model

// DefaultCollection is the document collection projects are upserted into
const DefaultCollection = "projetos"

// Field values are JSON-ready: float64 for numeric columns, string for text,
// nil when the column is absent from the cleaned table.

// Project is the denormalized document built for one registration number
type Project struct {
	NroRegistro    interface{} `json:"nro_registro"`
	NroAutorizacao interface{} `json:"nro_autorizacao"`
	DataEmissao    interface{} `json:"data_emissao"`
	DataValidade   interface{} `json:"data_validade"`
	Municipio      interface{} `json:"municipio"`
	UF             interface{} `json:"uf"`

	Detentor                  Detentor                  `json:"detentor"`
	Imovel                    Imovel                    `json:"imovel"`
	ResponsavelTecnico        ResponsavelTecnico        `json:"responsavel_tecnico"`
	EmpreendimentoTipo        EmpreendimentoTipo        `json:"empreendimento_tipo"`
	CaracteristicasAmbientais CaracteristicasAmbientais `json:"caracteristicas_ambientais"`
	Manejo                    Manejo                    `json:"manejo"`
	Situacao                  Situacao                  `json:"situacao"`

	ModalidadesPMFS []string `json:"modalidades_pmfs"`

	// Key is the document store key, the string form of NroRegistro
	Key string `json:"-"`
}

// Detentor is the authorization holder
type Detentor struct {
	Nome    interface{} `json:"nome"`
	CPFCNPJ interface{} `json:"cpf_cnpj"`
}

// Imovel is the rural property the plan is attached to
type Imovel struct {
	Nome               interface{} `json:"nome"`
	CAR                interface{} `json:"car"`
	NomeEmpreendimento interface{} `json:"nome_empreendimento"`
	Latitude           interface{} `json:"latitude"`
	Longitude          interface{} `json:"longitude"`
}

// ResponsavelTecnico is the technical responsible for the plan
type ResponsavelTecnico struct {
	Nome        interface{} `json:"nome"`
	NroART      interface{} `json:"nro_art"`
	AtividadeRT interface{} `json:"atividade_rt"`
	Atividade   interface{} `json:"atividade"`
}

// EmpreendimentoTipo describes the venture and who analyses it
type EmpreendimentoTipo struct {
	Tipo                 interface{} `json:"tipo"`
	NaturezaJuridica     interface{} `json:"natureza_juridica"`
	CompetenciaAvaliacao interface{} `json:"competencia_avaliacao"`
	OrgaoAmbiental       interface{} `json:"orgao_ambiental"`
}

// CaracteristicasAmbientais are the environmental descriptors of the area
type CaracteristicasAmbientais struct {
	Clima          interface{} `json:"clima"`
	Solo           interface{} `json:"solo"`
	Bioma          interface{} `json:"bioma"`
	Fitofisionomia interface{} `json:"fitofisionomia"`
}

// Manejo holds the forest management metrics
type Manejo struct {
	MetodoExtracao           interface{} `json:"metodo_extracao"`
	SistemaSilvicultural     interface{} `json:"sistema_silvicultural"`
	CicloCorte               interface{} `json:"ciclo_corte"`
	AreaTotalPropriedade     interface{} `json:"area_total_propriedade"`
	AreaManejoFlorestal      interface{} `json:"area_manejo_florestal"`
	AreaEfetivoManejo        interface{} `json:"area_efetivo_manejo"`
	CapacidadeProdutiva      interface{} `json:"capacidade_produtiva"`
	EstimativaProdutivaAnual interface{} `json:"estimativa_produtiva_anual"`
	IntensidadeCorte         interface{} `json:"intensidade_corte"`
	EquacaoVolume            interface{} `json:"equacao_volume"`
	AreaAutorizada           interface{} `json:"area_autorizada"`
}

// Situacao is the processing status of the authorization
type Situacao struct {
	Status                     interface{} `json:"status"`
	DataSituacao               interface{} `json:"data_situacao"`
	UltimoTramite              interface{} `json:"ultimo_tramite"`
	DataTramite                interface{} `json:"data_tramite"`
	UltimaAtualizacaoRelatorio interface{} `json:"ultima_atualizacao_relatorio"`
}
