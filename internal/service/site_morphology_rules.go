package service

// siteMorphologyRule permits a set of morphology codes at a set of sites.
// Sites are matched exactly against the record's topography.
type siteMorphologyRule struct {
	family       string
	sites        []string
	morphologies []string
}

// siteMorphologyRules is the site/morphology compatibility matrix, grouped by tumour family
var siteMorphologyRules = []siteMorphologyRule{
	{
		family: "Salivary gland tumours",
		sites: []string{
			"C07", "C08",
		},
		morphologies: []string{
			"8561", "8974",
		},
	},
	{
		family: "Stomach tumours",
		sites: []string{
			"C16",
		},
		morphologies: []string{
			"8142", "8214",
		},
	},
	{
		family: "Small intestine tumours",
		sites: []string{
			"C17",
		},
		morphologies: []string{
			"8683", "9764",
		},
	},
	{
		family: "Colo-rectal tumours",
		sites: []string{
			"C18", "C19", "C20", "C26", "C76.2", "C76.3", "C76.7", "C76.8", "C80",
		},
		morphologies: []string{
			"8213", "8220", "8261",
		},
	},
	{
		family: "Anal tumours",
		sites: []string{
			"C20", "C21",
		},
		morphologies: []string{
			"8124", "8215",
		},
	},
	{
		family: "Gastrointestinal tumours",
		sites: []string{
			"C15", "C16", "C17", "C18", "C19", "C20", "C26", "C76.2", "C76.3", "C76.7",
			"C76.8", "C80",
		},
		morphologies: []string{
			"8144", "8145", "8221", "8936", "9717",
		},
	},
	{
		family: "Liver tumours",
		sites: []string{
			"C22",
		},
		morphologies: []string{
			"8170", "8171", "8172", "8173", "8174", "8175", "8970", "9124",
		},
	},
	{
		family: "Biliary tumours",
		sites: []string{
			"C22", "C23", "C24",
		},
		morphologies: []string{
			"8160", "8161", "8162", "8180", "8264",
		},
	},
	{
		family: "Pancreatic tumours",
		sites: []string{
			"C25",
		},
		morphologies: []string{
			"8150", "8151", "8152", "8154", "8155", "8202", "8452", "8453", "8971",
		},
	},
	{
		family: "Olfactory tumours",
		sites: []string{
			"C30", "C31",
		},
		morphologies: []string{
			"9520", "9521", "9522", "9523",
		},
	},
	{
		family: "Lung tumours",
		sites: []string{
			"C34", "C39.8", "C39.9", "C76.1", "C76.7", "C76.8", "C80",
		},
		morphologies: []string{
			"8012", "8040", "8041", "8042", "8043", "8044", "8045", "8046", "8250", "8252",
			"8253", "8254", "8255", "8827", "8972",
		},
	},
	{
		family: "Mesotheliomas & pleuropulmonary Blastomas",
		sites: []string{
			"C34", "C38.4", "C39.8", "C39.9", "C48", "C76.1", "C76.2", "C76.3", "C76.7", "C76.8",
			"C80",
		},
		morphologies: []string{
			"8973", "9050", "9051", "9052", "9053", "9055",
		},
	},
	{
		family: "Thymus tumours",
		sites: []string{
			"C37", "C38",
		},
		morphologies: []string{
			"8580", "8581", "8582", "8583", "8584", "8585", "8586", "8587", "8588", "8589",
			"9679",
		},
	},
	{
		family: "Askin tumours",
		sites: []string{
			"C39", "C40", "C41", "C49", "C76", "C80",
		},
		morphologies: []string{
			"9365",
		},
	},
	{
		family: "Adamantinomas of long bones",
		sites: []string{
			"C40.0", "C40.2", "C40.8", "C40.9",
		},
		morphologies: []string{
			"9261",
		},
	},
	{
		family: "Naevi and Melanomas",
		sites: []string{
			"C44", "C51", "C60", "C63.2", "C69", "C70", "C76", "C80",
		},
		morphologies: []string{
			"8720", "8721", "8722", "8723", "8725", "8727", "8730", "8740", "8741", "8742",
			"8743", "8744", "8745", "8746", "8750", "8760", "8761", "8762", "8770", "8771",
			"8772", "8780",
		},
	},
	{
		family: "Adenosarcomas and Mesonephromas",
		sites: []string{
			"C51", "C52", "C53", "C54", "C55", "C56", "C57", "C58", "C62", "C63.8",
			"C63.9", "C75.0", "C75.1", "C75.2", "C75.4", "C75.5", "C75.8", "C75.9",
		},
		morphologies: []string{
			"8905", "8930", "8931", "8934", "8950", "8951", "8960", "8964", "8965", "8966",
			"8967", "8980", "8981", "8982", "8802", "8810", "8811", "8813", "8814", "8815",
			"8820", "8821", "8822", "8823", "8824", "8825", "8826", "8830", "8840", "8841",
			"8842", "8850", "8851", "8852", "8853", "8854", "8855", "8856", "8857", "8858",
			"8860", "8861", "8862", "8870", "8880", "8881", "8890", "8891", "8892", "8893",
			"8894", "8895", "8896", "8897", "8900", "8901", "8902", "8903", "8904", "8910",
			"8912", "8920", "8921", "8990", "8991", "9132",
		},
	},
	{
		family: "Stromal sarcomas",
		sites: []string{
			"C50", "C53", "C54", "C55", "C56", "C57", "C76.1", "C76.2", "C76.3", "C76.7",
			"C76.8", "C80",
		},
		morphologies: []string{
			"8935",
		},
	},
	{
		family: "Tumours of bone and connective tissue",
		sites: []string{
			"C40", "C41", "C49", "C76", "C80",
		},
		morphologies: []string{
			"9040", "9041", "9042", "9043", "9044", "9251", "9252", "9260",
		},
	},
	{
		family: "Chondromatous tumours",
		sites: []string{
			"C30.0", "C31", "C32.3", "C32.8", "C32.9", "C33.9", "C39", "C40", "C41", "C49",
			"C76", "C80",
		},
		morphologies: []string{
			"9220", "9221", "9230", "9231", "9240", "9241", "9242", "9243",
		},
	},
	{
		family: "Intraepithelial tumours",
		sites: []string{
			"C21", "C51", "C52", "C53", "C61",
		},
		morphologies: []string{
			"8077", "8148",
		},
	},
	{
		family: "Transitional cell tumours",
		sites: []string{
			"C11", "C14", "C20", "C21", "C26", "C30", "C61",
		},
		morphologies: []string{
			"8120", "8121", "8122", "8130", "8131",
		},
	},
	{
		family: "Carcinoid tumours",
		sites: []string{
			"C06.9", "C07", "C08", "C21", "C22", "C23", "C24", "C25", "C26.8", "C26.9",
			"C50", "C61",
		},
		morphologies: []string{
			"8240", "8241", "8242", "8243", "8244", "8245", "8246", "8248", "8249",
		},
	},
	{
		family: "Ductal and lobular tumours",
		sites: []string{
			"C06.9", "C07", "C08", "C21", "C22", "C23", "C24", "C25", "C26.8", "C26.9",
			"C50", "C61",
		},
		morphologies: []string{
			"8500", "8503", "8504", "8514", "8525",
		},
	},
	{
		family: "Paragangliomas",
		sites: []string{
			"C38", "C39.8", "C39.9", "C47", "C48", "C49", "C67", "C68", "C71", "C72",
			"C73", "C74", "C75", "C76", "C80",
		},
		morphologies: []string{
			"8680", "8681", "8682", "8693", "8710", "8711", "8712", "8713",
		},
	},
	{
		family: "Nerve sheath tumours and others",
		sites: []string{
			"C40", "C41", "C42", "C43", "C44", "C45", "C46", "C47", "C48", "C49",
		},
		morphologies: []string{
			"8810", "8811", "8813", "8814", "8820", "8821", "8822", "8823", "8824", "8825",
			"8826", "8830", "8840", "8841", "8842", "8850", "8851", "8852", "8853", "8854",
			"8855", "8856", "8857", "8858", "8860", "8861", "8862", "8870", "8880", "8881",
			"8890", "8891", "8892", "8893", "8894", "8895", "8896", "8897", "8900", "8901",
			"8902", "8903", "8904", "8910", "8912", "8920", "8921", "8990", "8991", "9132",
		},
	},
	{
		family: "Additional site-specific combinations",
		sites: []string{
			"C07", "C08", "C21", "C22", "C23", "C24", "C25", "C26", "C56", "C57",
			"C62", "C63", "C73", "C75", "C76.0", "C76.1", "C76.2", "C76.3", "C76.7", "C76.8",
			"C80",
		},
		morphologies: []string{
			"8080", "8081", "8090", "8091", "8092", "8093", "8094", "8095", "8096", "8097",
			"8100", "8101", "8102", "8103", "8110", "8390", "8391", "8392", "8400", "8401",
			"8402", "8403", "8404", "8405", "8406", "8407", "8408", "8409", "8410", "8413",
			"8420", "8542", "8790", "9700", "9709", "9718", "9734",
		},
	},
	{
		family: "Gonadal tumours",
		sites: []string{
			"C51", "C52", "C53", "C54", "C55", "C56", "C57", "C58", "C62", "C63.8",
			"C63.9", "C75.0", "C75.1", "C75.2", "C75.4", "C75.5", "C75.8", "C75.9",
		},
		morphologies: []string{
			"8590", "8591", "8592", "8630", "8631", "8633", "8634", "8640", "8642", "8650",
			"9054",
		},
	},
	{
		family: "Meningeal tumours",
		sites: []string{
			"C40", "C41", "C42", "C43", "C44", "C45", "C46", "C47", "C48", "C49",
		},
		morphologies: []string{
			"8728", "9530", "9531", "9532", "9533", "9534", "9535", "9537", "9538", "9539",
		},
	},
	{
		family: "Cerebellar tumours",
		sites: []string{
			"C71.6", "C71.8", "C71.9", "C72.8", "C72.9",
		},
		morphologies: []string{
			"9470", "9471", "9472", "9474", "9480", "9493",
		},
	},
	{
		family: "Cerebral tumours, CNS tumours",
		sites: []string{
			"C70", "C71", "C72", "C75.3",
		},
		morphologies: []string{
			"9381", "9390", "9444", "9380", "9382", "9383", "9384", "9391", "9392", "9393",
			"9394", "9400", "9401", "9410", "9411", "9412", "9413", "9420", "9421", "9423",
			"9424", "9430", "9440", "9441", "9442", "9450", "9451", "9460", "9473", "9505",
			"9506", "9508",
		},
	},
	{
		family: "Thyroid tumours",
		sites: []string{
			"C73",
		},
		morphologies: []string{
			"8330", "8331", "8332", "8333", "8334", "8335", "8336", "8337", "8340", "8341",
			"8342", "8343", "8344", "8345", "8346", "8347", "8350",
		},
	},
	{
		family: "Adrenal tumours",
		sites: []string{
			"C74",
		},
		morphologies: []string{
			"8370", "8371", "8372", "8373", "8374", "8375", "8700",
		},
	},
	{
		family: "Parathyroid tumours",
		sites: []string{
			"C75.0", "C75.1", "C75.2", "C75.4",
		},
		morphologies: []string{
			"8321", "8322",
		},
	},
	{
		family: "Pituitary tumours",
		sites: []string{
			"C75.1", "C75.2",
		},
		morphologies: []string{
			"8270", "8271", "8272", "8280", "8281", "8300", "9350", "9351", "9352", "9582",
		},
	},
	{
		family: "Pineal tumours",
		sites: []string{
			"C75.3",
		},
		morphologies: []string{
			"9360", "9361", "9362",
		},
	},
	{
		family: "Tumours of glomus jugulare / aortic body",
		sites: []string{
			"C75.5",
		},
		morphologies: []string{
			"8690", "8691",
		},
	},
	{
		family: "Adenoid basal carcinomas",
		sites: []string{
			"C44", "C53", "C57.8", "C57.9",
		},
		morphologies: []string{
			"8098",
		},
	},
	{
		family: "Papillary (cyst)adenocarcinomas",
		sites: []string{
			"C25", "C26", "C56", "C57", "C50", "C61",
		},
		morphologies: []string{
			"8450",
		},
	},
	{
		family: "Serous surface papillary carcinomas",
		sites: []string{
			"C48", "C56",
		},
		morphologies: []string{
			"8461",
		},
	},
	{
		family: "Additional Gonadal tumours",
		sites: []string{
			"C56", "C57.8", "C57.9", "C62", "C63.8", "C63.9", "C75.8", "C75.9",
		},
		morphologies: []string{
			"8590", "8591", "8592", "8630", "8631", "8633", "8634", "8640", "8642", "8650",
			"9054",
		},
	},
	{
		family: "Consolidated gonadal-site groups",
		sites: []string{
			"C56", "C57.8", "C57.9", "C62", "C63.8", "C63.9", "C75.8", "C75.9",
		},
		morphologies: []string{
			"8935", "9040", "9041", "9042", "9043", "9044", "9251", "9252", "9260", "9220",
			"9221", "9230", "9231", "9240", "9241", "9242", "9243", "8077", "8148", "8120",
			"8121", "8122", "8130", "8131", "8240", "8241", "8242", "8243", "8244", "8245",
			"8246", "8248", "8249", "8500", "8503", "8504", "8514", "8525", "8680", "8681",
			"8682", "8693", "8710", "8711", "8712", "8713",
		},
	},
	{
		family: "Consolidated ill-defined-site groups",
		sites: []string{
			"C76.0", "C76.1", "C76.2", "C76.3", "C76.7", "C76.8", "C80",
		},
		morphologies: []string{
			"9100", "9101", "9102", "9103", "9104", "9105", "9370", "9371", "9372", "9373",
			"9490", "9491", "9492", "9500", "9501", "9502", "9503", "9504", "8728", "9530",
			"9531", "9532", "9533", "9534", "9535", "9537", "9538", "9539", "9470", "9471",
			"9472", "9474", "9480", "9493", "9381", "9390", "9444", "9380", "9382", "9383",
			"9384", "9391", "9392", "9393", "9394", "9400", "9401", "9410", "9411", "9412",
			"9413", "9420", "9421", "9423", "9424", "9430", "9440", "9441", "9442", "9450",
			"9451", "9460", "9473", "9505", "9506", "9508", "8330", "8331", "8332", "8333",
			"8334", "8335", "8336", "8337", "8340", "8341", "8342", "8343", "8344", "8345",
			"8346", "8347", "8350", "8370", "8371", "8372", "8373", "8374", "8375", "8700",
			"8321", "8322", "8270", "8271", "8272", "8280", "8281", "8300", "9350", "9351",
			"9352", "9582", "9360", "9361", "9362", "8690", "8691", "8692", "8730", "8743",
			"8550", "8551", "8552", "8560", "8561", "8562", "8570", "8571", "8572", "8573",
			"8574", "8575", "8576", "8932", "8933", "8934", "8950", "8951", "8960", "8964",
			"8965", "8966", "8967", "8980", "8981", "8982", "8802", "8810", "8811", "8813",
			"8814", "8815", "8820", "8821", "8822", "8823", "8824", "8825", "8826", "8830",
			"8840", "8841", "8842", "8850", "8851", "8852", "8853", "8854", "8855", "8856",
			"8857", "8858", "8860", "8861", "8862", "8870", "8880", "8881", "8890", "8891",
			"8892", "8893", "8894", "8895", "8896", "8897", "8900", "8901", "8902", "8903",
			"8904", "8910", "8912", "8920", "8921", "8990", "8991", "9132", "9540", "9541",
			"9550", "9560", "9561", "9562", "9570", "9571",
		},
	},
}
