package xmlparser

const nfeProcXML = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35250312345678000190550010000010011000010010" versao="4.00">
      <ide><cUF>35</cUF><nNF>1001</nNF><dhEmi>2025-03-10T10:00:00-03:00</dhEmi></ide>
      <emit>
        <CNPJ>12345678000190</CNPJ><xNome>Loja Exemplo</xNome>
        <enderEmit><xMun>Sao Paulo</xMun><UF>SP</UF></enderEmit>
      </emit>
      <dest><CNPJ>98765432000110</CNPJ><xNome>Cliente</xNome></dest>
      <det nItem="1">
        <prod><cProd>A1</cProd><CFOP>5102</CFOP><vProd>100.00</vProd></prod>
        <imposto><ICMS><ICMS00><CST>00</CST><vICMS>18.00</vICMS></ICMS00></ICMS></imposto>
      </det>
      <det nItem="2"><prod><cProd>B2</cProd><CFOP>5102</CFOP><vProd>50.00</vProd></prod></det>
      <det nItem="3"><prod><cProd>C3</cProd><CFOP>6102</CFOP><vProd>25.50</vProd></prod></det>
      <total><ICMSTot><vProd>175.50</vProd><vNF>175.50</vNF></ICMSTot></total>
      <infAdic><infCpl>Pedido 42</infCpl></infAdic>
    </infNFe>
  </NFe>
  <protNFe><infProt><nProt>135250000000001</nProt></infProt></protNFe>
</nfeProc>`

const nfeWithoutItemsXML = `<NFe><infNFe><ide><nNF>7</nNF></ide><emit><CNPJ>1</CNPJ></emit>` +
	`<total><ICMSTot><vNF>10.00</vNF></ICMSTot></total></infNFe></NFe>`

const cteProcXML = `<cteProc><CTe><infCte Id="CTe1">
  <ide><nCT>55</nCT></ide><emit><CNPJ>11</CNPJ></emit><dest><CNPJ>22</CNPJ></dest>
  <infCTeNorm><infDoc>
    <infNFe><chave>35190000000000000000000000000000000000000001</chave></infNFe>
    <infNFe><chave>35190000000000000000000000000000000000000002</chave></infNFe>
  </infDoc></infCTeNorm>
</infCte></CTe></cteProc>`

const compNfseXML = `<CompNfse xmlns="http://www.abrasf.org.br/nfse.xsd">
  <Nfse versao="2.02">
    <InfNfse Id="n1">
      <Numero>77</Numero>
      <CodigoVerificacao>ABC</CodigoVerificacao>
      <DataEmissao>2025-03-11</DataEmissao>
      <ValoresNfse>
        <BaseCalculo>1000.00</BaseCalculo><ValorIss>50.00</ValorIss><ValorLiquidoNfse>950.00</ValorLiquidoNfse>
      </ValoresNfse>
      <PrestadorServico>
        <RazaoSocial>Prestadora LTDA</RazaoSocial>
        <Endereco><Endereco>Rua A</Endereco><Bairro>Centro</Bairro><Uf>SP</Uf></Endereco>
        <Contato><Telefone>1199999</Telefone><Email>p@x.com</Email></Contato>
      </PrestadorServico>
      <DeclaracaoPrestacaoServico>
        <InfDeclaracaoPrestacaoServico>
          <Servico>
            <Valores><ValorServicos>1000.00</ValorServicos><IssRetido>2</IssRetido></Valores>
            <ItemListaServico>01.07</ItemListaServico><Discriminacao>Suporte</Discriminacao>
          </Servico>
          <Prestador><CpfCnpj><Cnpj>12345678000190</Cnpj></CpfCnpj></Prestador>
          <Tomador>
            <IdentificacaoTomador><CpfCnpj><Cnpj>98765432000110</Cnpj></CpfCnpj></IdentificacaoTomador>
            <RazaoSocial>Tomadora SA</RazaoSocial>
            <Endereco><Bairro>Jardins</Bairro></Endereco>
            <Contato><Email>t@x.com</Email></Contato>
          </Tomador>
        </InfDeclaracaoPrestacaoServico>
      </DeclaracaoPrestacaoServico>
    </InfNfse>
  </Nfse>
</CompNfse>`

const listaNfseXML = `<ConsultarNfseServicoPrestadoResposta><ListaNfse>
  <CompNfse><Nfse><InfNfse><Numero>1</Numero><ValoresNfse><ValorLiquidoNfse>10.00</ValorLiquidoNfse></ValoresNfse></InfNfse></Nfse></CompNfse>
  <CompNfse><Nfse><InfNfse><Numero>2</Numero><ValoresNfse><ValorLiquidoNfse>20.00</ValorLiquidoNfse></ValoresNfse></InfNfse></Nfse></CompNfse>
</ListaNfse></ConsultarNfseServicoPrestadoResposta>`

const municipalNfseXML = `<nfse>
  <nf><numero_nfse>10</numero_nfse><valor_total>300,00</valor_total></nf>
  <prestador><cpfcnpj>111</cpfcnpj><cidade>6291</cidade></prestador>
  <tomador><nome_razao_social>Cliente</nome_razao_social></tomador>
  <itens>
    <lista><descritivo>Servico A</descritivo><valor_tributavel>100,00</valor_tributavel></lista>
    <lista><descritivo>Servico B</descritivo><valor_tributavel>200,00</valor_tributavel></lista>
  </itens>
</nfse>`

const genericXML = `<Relatorio xmlns="urn:x" xmlns:a="urn:a" versao="1.0">
  <Cabecalho><Numero>5</Numero><Numero>6</Numero></Cabecalho>
  <Linha tipo="A"><Valor>10</Valor></Linha>
  <Linha tipo="B"><Valor>20</Valor></Linha>
  <Vazio>   </Vazio>
</Relatorio>`
